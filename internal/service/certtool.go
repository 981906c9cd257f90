package service

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"domain-locker/internal/domain"
)

// CertDetails is a pasted certificate decoded for display.
type CertDetails struct {
	domain.SSLCertificate
	DaysRemaining int      `json:"days_remaining"`
	DNSNames      []string `json:"dns_names"`
	SerialNumber  string   `json:"serial_number"`
	IsCA          bool     `json:"is_ca"`
}

// DecodeCertificate parses the first PEM certificate block of pemText.
func DecodeCertificate(pemText string, now time.Time) (*CertDetails, error) {
	// 1. PEM block
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemText)))
	if block == nil {
		return nil, domain.NewValidationError("cannot parse certificate, expected PEM starting with -----BEGIN CERTIFICATE-----")
	}

	// 2. X.509
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, domain.NewValidationError("invalid certificate: %v", err)
	}

	// 3. Details
	info := certificateInfo(cert)
	if info.Subject == "" && len(cert.Subject.Organization) > 0 {
		info.Subject = cert.Subject.Organization[0]
	}
	dnsNames := cert.DNSNames
	if dnsNames == nil {
		dnsNames = []string{}
	}
	return &CertDetails{
		SSLCertificate: *info,
		DaysRemaining:  info.DaysRemaining(now),
		DNSNames:       dnsNames,
		SerialNumber:   formatSerial(fmt.Sprintf("%X", cert.SerialNumber)),
		IsCA:           cert.IsCA,
	}, nil
}

// formatSerial renders a hex serial as AA:BB:CC.
func formatSerial(s string) string {
	if len(s)%2 == 1 {
		s = "0" + s
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && i%2 == 0 {
			b.WriteRune(':')
		}
		b.WriteRune(r)
	}
	return b.String()
}
