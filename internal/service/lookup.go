package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"domain-locker/internal/conf"
	"domain-locker/internal/domain"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"
)

// DomainLookup resolves the live state of a domain name.
type DomainLookup interface {
	Lookup(ctx context.Context, name string) (*domain.DomainInfo, error)
}

// LookupService collects DNS, SSL and WHOIS information for a domain.
type LookupService struct {
	DNSServer string
	Timeout   time.Duration

	sslPort    string
	retryDelay time.Duration
	whoisFn    func(root string) (string, error)
	certFn     func(ctx context.Context, addr, serverName string) (*x509.Certificate, error)
}

func NewLookupService(cfg conf.LookupConfig) *LookupService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &LookupService{
		DNSServer:  cfg.DNSServer,
		Timeout:    timeout,
		sslPort:    "443",
		retryDelay: 2 * time.Second,
	}
	client := whois.NewClient().SetTimeout(timeout)
	s.whoisFn = func(root string) (string, error) { return client.Whois(root) }
	s.certFn = s.inspectCertificate
	return s
}

// =============================================================================
// Public Methods
// =============================================================================

// Lookup runs the DNS, SSL and WHOIS checks concurrently. A failing section is
// reported in info.Errors; only an invalid name fails the call.
func (s *LookupService) Lookup(ctx context.Context, name string) (*domain.DomainInfo, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*s.Timeout)
	defer cancel()

	info := &domain.DomainInfo{
		DomainName:  name,
		Statuses:    []string{},
		IPAddresses: []domain.IPAddress{},
		DNSRecords:  []domain.DNSRecord{},
		Errors:      map[string]string{},
		LookedUpAt:  time.Now().UTC(),
	}
	var mu sync.Mutex
	fail := func(section string, err error) {
		mu.Lock()
		info.Errors[section] = err.Error()
		mu.Unlock()
		logrus.Debugf("[Lookup] %s %s failed: %v", name, section, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// 1. DNS
	g.Go(func() error {
		ips, records, failed, err := s.resolveDNS(gctx, name)
		if err != nil {
			fail("dns", err)
			return nil
		}
		for recordType, qerr := range failed {
			fail(domain.DNSErrorKey(recordType), qerr)
		}
		mu.Lock()
		info.IPAddresses = ips
		info.DNSRecords = records
		mu.Unlock()
		return nil
	})

	// 2. SSL
	g.Go(func() error {
		var cert *x509.Certificate
		err := withRetry(gctx, 3, s.retryDelay, func() error {
			var dialErr error
			cert, dialErr = s.certFn(gctx, net.JoinHostPort(name, s.sslPort), name)
			return dialErr
		})
		if err != nil {
			fail("ssl", errors.New(parseDialError(err)))
			return nil
		}
		mu.Lock()
		info.SSL = certificateInfo(cert)
		mu.Unlock()
		return nil
	})

	// 3. WHOIS
	g.Go(func() error {
		if err := s.fetchWhois(name, info, &mu); err != nil {
			fail("whois", err)
		}
		return nil
	})

	_ = g.Wait()

	if len(info.Errors) == 0 {
		info.Errors = nil
	}
	return info, nil
}

// =============================================================================
// DNS
// =============================================================================

var dnsQueryTypes = []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeMX, dns.TypeNS, dns.TypeTXT}

// resolveDNS queries every record type. Types that fail are returned in failed,
// keyed by record type; err is set only when every query failed.
func (s *LookupService) resolveDNS(ctx context.Context, name string) ([]domain.IPAddress, []domain.DNSRecord, map[string]error, error) {
	ips := []domain.IPAddress{}
	records := []domain.DNSRecord{}
	failed := map[string]error{}
	var firstErr error

	for _, qtype := range dnsQueryTypes {
		answers, err := s.queryDNS(ctx, name, qtype)
		if err != nil {
			failed[dns.TypeToString[qtype]] = err
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, rr := range answers {
			switch v := rr.(type) {
			case *dns.A:
				ips = append(ips, domain.IPAddress{IPAddress: v.A.String()})
			case *dns.AAAA:
				ips = append(ips, domain.IPAddress{IPAddress: v.AAAA.String(), IsIPv6: true})
			case *dns.MX:
				records = append(records, domain.DNSRecord{RecordType: "MX", RecordValue: strings.TrimSuffix(v.Mx, ".")})
			case *dns.NS:
				records = append(records, domain.DNSRecord{RecordType: "NS", RecordValue: strings.TrimSuffix(v.Ns, ".")})
			case *dns.TXT:
				records = append(records, domain.DNSRecord{RecordType: "TXT", RecordValue: strings.Join(v.Txt, "")})
			}
		}
	}

	if len(failed) == len(dnsQueryTypes) {
		return nil, nil, nil, firstErr
	}

	sort.Slice(ips, func(i, j int) bool { return ips[i].IPAddress < ips[j].IPAddress })
	domain.SortDNSRecords(records)
	return ips, records, failed, nil
}

func (s *LookupService) queryDNS(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	client := &dns.Client{Net: "udp", Timeout: s.Timeout}
	resp, _, err := client.ExchangeContext(ctx, m, s.DNSServer)
	if err != nil {
		return nil, err
	}
	// Large TXT sets do not fit in a UDP answer
	if resp.Truncated {
		client.Net = "tcp"
		if resp, _, err = client.ExchangeContext(ctx, m, s.DNSServer); err != nil {
			return nil, err
		}
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
		return resp.Answer, nil
	case dns.RcodeNameError:
		return nil, fmt.Errorf("no such domain: %s", name)
	default:
		return nil, fmt.Errorf("dns %s query for %s: %s", dns.TypeToString[qtype], name, dns.RcodeToString[resp.Rcode])
	}
}

// =============================================================================
// SSL
// =============================================================================

// inspectCertificate returns the leaf certificate served at addr. The chain is not
// verified; only the certificate details are of interest.
func (s *LookupService) inspectCertificate(ctx context.Context, addr, serverName string) (*x509.Certificate, error) {
	dialer := &net.Dialer{Timeout: s.Timeout, KeepAlive: -1}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer rawConn.Close()

	_ = rawConn.SetDeadline(time.Now().Add(s.Timeout))

	conn := tls.Client(rawConn, &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         serverName,
	})
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, err
	}

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, errors.New("server sent no certificate")
	}
	return certs[0], nil
}

// certificateInfo extracts the fields stored for a domain's certificate.
func certificateInfo(cert *x509.Certificate) *domain.SSLCertificate {
	info := &domain.SSLCertificate{
		Issuer:             cert.Issuer.CommonName,
		Subject:            cert.Subject.CommonName,
		ValidFrom:          cert.NotBefore.UTC(),
		ValidTo:            cert.NotAfter.UTC(),
		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
	}
	if info.Issuer == "" && len(cert.Issuer.Organization) > 0 {
		info.Issuer = cert.Issuer.Organization[0]
	}
	if len(cert.Issuer.Country) > 0 {
		info.IssuerCountry = cert.Issuer.Country[0]
	}
	sum := sha256.Sum256(cert.Raw)
	info.Fingerprint = hex.EncodeToString(sum[:])

	switch key := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		info.KeySize = key.N.BitLen()
	case *ecdsa.PublicKey:
		info.KeySize = key.Curve.Params().BitSize
	case ed25519.PublicKey:
		info.KeySize = 256
	}
	return info
}

// =============================================================================
// WHOIS
// =============================================================================

func (s *LookupService) fetchWhois(name string, info *domain.DomainInfo, mu *sync.Mutex) error {
	root := getRootDomain(name)

	raw, err := s.whoisFn(root)
	if err != nil {
		return err
	}
	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if d := parsed.Domain; d != nil {
		info.ExpiryDate = whoisTime(d.ExpirationDateInTime, d.ExpirationDate)
		info.RegistrationDate = whoisTime(d.CreatedDateInTime, d.CreatedDate)
		info.UpdatedDate = whoisTime(d.UpdatedDateInTime, d.UpdatedDate)
		for _, status := range d.Status {
			// "clientTransferProhibited https://icann.org/epp#..." -> code only
			if fields := strings.Fields(status); len(fields) > 0 {
				info.Statuses = append(info.Statuses, fields[0])
			}
		}
	}
	if r := parsed.Registrar; r != nil && r.Name != "" {
		info.Registrar = &domain.Registrar{Name: r.Name, URL: r.ReferralURL}
	}
	if c := parsed.Registrant; c != nil {
		info.Whois = &domain.WhoisInfo{
			Name:         c.Name,
			Organization: c.Organization,
			Country:      c.Country,
			Street:       c.Street,
			City:         c.City,
			State:        c.Province,
			PostalCode:   c.PostalCode,
		}
	}
	return nil
}

func whoisTime(parsed *time.Time, raw string) *time.Time {
	if parsed != nil && !parsed.IsZero() {
		t := parsed.UTC()
		return &t
	}
	if raw == "" {
		return nil
	}
	t, err := parseWhoisTime(raw)
	if err != nil {
		logrus.Debugf("[Lookup] %v", err)
		return nil
	}
	return &t
}

// parseWhoisTime handles the formats registries use that whois-parser leaves unparsed.
func parseWhoisTime(dateStr string) (time.Time, error) {
	// "2026-06-17 13:11:45 (UTC+8)"
	if idx := strings.Index(dateStr, " ("); idx != -1 {
		dateStr = dateStr[:idx]
	}
	dateStr = strings.TrimSpace(dateStr)

	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05.00Z",
		time.RFC3339,
		"2006-01-02",
		"02-Jan-2006",
		"2006.01.02",
	}
	for _, f := range formats {
		if t, e := time.Parse(f, dateStr); e == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown date format: %s", dateStr)
}

// =============================================================================
// Helpers
// =============================================================================

func withRetry(ctx context.Context, attempts int, initialDelay time.Duration, op func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err = op(); err == nil {
			return nil
		}
		if i < attempts-1 {
			sleepTime := initialDelay * time.Duration(1<<i)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleepTime):
			}
		}
	}
	return err
}

func parseDialError(err error) string {
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "no such host"):
		return "DNS resolution failed (no such host)"
	case strings.Contains(errMsg, "i/o timeout"):
		return "connection timed out"
	case strings.Contains(errMsg, "connection refused"):
		return "connection refused"
	case strings.Contains(errMsg, "handshake failure"):
		return "TLS handshake failed"
	}
	return errMsg
}

func getRootDomain(domainName string) string {
	root, err := publicsuffix.EffectiveTLDPlusOne(domainName)
	if err != nil {
		return domainName
	}
	return root
}
