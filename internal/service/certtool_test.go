package service

import (
	"encoding/pem"
	"testing"
	"time"

	"domain-locker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCertificate(t *testing.T) {
	cert := selfSignedCert(t)
	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}))

	now := time.Date(2026, 12, 21, 12, 0, 0, 0, time.UTC)
	details, err := DecodeCertificate("\n  "+pemText+"  \n", now)
	require.NoError(t, err)

	assert.Equal(t, "example.com", details.Subject)
	assert.Equal(t, "example.com", details.Issuer)
	assert.Equal(t, "US", details.IssuerCountry)
	assert.Equal(t, 10, details.DaysRemaining)
	assert.Equal(t, []string{"example.com"}, details.DNSNames)
	assert.Equal(t, "2A", details.SerialNumber)
	assert.Equal(t, "ECDSA-SHA256", details.SignatureAlgorithm)
	assert.False(t, details.IsCA)
}

func TestDecodeCertificateInvalid(t *testing.T) {
	_, err := DecodeCertificate("hello", time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)

	bogus := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("nope")}))
	_, err = DecodeCertificate(bogus, time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFormatSerial(t *testing.T) {
	assert.Equal(t, "0A:BC:DE", formatSerial("ABCDE"))
	assert.Equal(t, "01:02", formatSerial("0102"))
}
