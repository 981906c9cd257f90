package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"domain-locker/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackedDomain() domain.Domain {
	expiry := time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)
	return domain.Domain{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		DomainName:  "example.com",
		ExpiryDate:  &expiry,
		Registrar:   &domain.Registrar{Name: "Gandi"},
		IPAddresses: []domain.IPAddress{{IPAddress: "93.184.216.34"}},
		DNSRecords:  []domain.DNSRecord{{RecordType: "NS", RecordValue: "a.iana-servers.net"}},
		SSL:         &domain.SSLCertificate{Issuer: "R3", ValidTo: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)},
		Whois:       &domain.WhoisInfo{Organization: "Example Org", Country: "US"},
		Statuses:    []string{"clientTransferProhibited"},
	}
}

func TestGenerateDiff(t *testing.T) {
	base := trackedDomain()

	t.Run("equal input yields no changes", func(t *testing.T) {
		assert.Empty(t, generateDiff(base, base))
	})

	testCases := []struct {
		name     string
		mutate   func(d *domain.Domain)
		wantType domain.NotificationType
		wantOld  string
		wantNew  string
	}{
		{
			name:     "registrar",
			mutate:   func(d *domain.Domain) { d.Registrar = &domain.Registrar{Name: "Namecheap"} },
			wantType: domain.NotifyRegistrar, wantOld: "Gandi", wantNew: "Namecheap",
		},
		{
			name:     "expiry",
			mutate:   func(d *domain.Domain) { d.ExpiryDate = ptrTime(time.Date(2028, 5, 1, 0, 0, 0, 0, time.UTC)) },
			wantType: domain.NotifyDomainExpiry, wantOld: "2027-05-01", wantNew: "2028-05-01",
		},
		{
			name:     "ip added",
			mutate:   func(d *domain.Domain) { d.IPAddresses = append(d.IPAddresses, domain.IPAddress{IPAddress: "10.0.0.1"}) },
			wantType: domain.NotifyIP, wantNew: "10.0.0.1",
		},
		{
			name:     "dns removed",
			mutate:   func(d *domain.Domain) { d.DNSRecords = nil },
			wantType: domain.NotifyDNS, wantOld: "NS a.iana-servers.net",
		},
		{
			name:     "ssl issuer",
			mutate:   func(d *domain.Domain) { d.SSL = &domain.SSLCertificate{Issuer: "E1", ValidTo: d.SSL.ValidTo} },
			wantType: domain.NotifySSL, wantOld: "R3", wantNew: "E1",
		},
		{
			name:     "ssl renewed",
			mutate:   func(d *domain.Domain) { d.SSL = &domain.SSLCertificate{Issuer: "R3", ValidTo: time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)} },
			wantType: domain.NotifySSL, wantOld: "2026-12-01", wantNew: "2027-03-01",
		},
		{
			name:     "status added",
			mutate:   func(d *domain.Domain) { d.Statuses = append([]string{}, "clientTransferProhibited", "clientHold") },
			wantType: domain.NotifyStatus, wantNew: "clientHold",
		},
		{
			name:     "whois country",
			mutate:   func(d *domain.Domain) { d.Whois = &domain.WhoisInfo{Organization: "Example Org", Country: "DE"} },
			wantType: domain.NotifyWhois, wantOld: "US", wantNew: "DE",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fresh := trackedDomain()
			fresh.ID, fresh.UserID = base.ID, base.UserID
			tc.mutate(&fresh)

			changes := generateDiff(base, fresh)
			require.Len(t, changes, 1)
			assert.Equal(t, tc.wantType, changes[0].ChangeType)
			assert.Equal(t, tc.wantOld, changes[0].OldValue)
			assert.Equal(t, tc.wantNew, changes[0].NewValue)
			assert.Equal(t, base.ID, changes[0].DomainID)
		})
	}
}

func TestDiffStrings(t *testing.T) {
	added, removed := diffStrings([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"c"}, added)
	assert.Equal(t, []string{"a"}, removed)

	added, removed = diffStrings(nil, nil)
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestDescribeChange(t *testing.T) {
	assert.Equal(t, "IP address added: 1.2.3.4", describeChange(domain.DomainUpdate{Change: "IP address added", NewValue: "1.2.3.4"}))
	assert.Equal(t, "Status removed: ok", describeChange(domain.DomainUpdate{Change: "Status removed", OldValue: "ok"}))
	assert.Equal(t, "Registrar changed: A ➔ B", describeChange(domain.DomainUpdate{Change: "Registrar changed", OldValue: "A", NewValue: "B"}))
}

func TestTrackerService_RefreshOne(t *testing.T) {
	stored := trackedDomain()
	stored.Notifications = map[domain.NotificationType]bool{domain.NotifyIP: true}

	var saved *domain.Domain
	var recorded []domain.DomainUpdate
	repo := &MockDomainRepo{
		updateFunc:     func(d *domain.Domain) error { saved = d; return nil },
		addUpdatesFunc: func(u []domain.DomainUpdate) error { recorded = u; return nil },
	}
	lookup := &MockLookup{lookupFunc: func(name string) (*domain.DomainInfo, error) {
		return &domain.DomainInfo{
			DomainName:  name,
			Registrar:   &domain.Registrar{Name: "Gandi"},
			ExpiryDate:  stored.ExpiryDate,
			IPAddresses: []domain.IPAddress{{IPAddress: "93.184.216.34"}, {IPAddress: "10.0.0.1"}},
			DNSRecords:  stored.DNSRecords,
			SSL:         stored.SSL,
			Whois:       stored.Whois,
			Statuses:    []string{"clientTransferProhibited", "clientHold"},
		}, nil
	}}
	notifRepo := &MockNotificationRepo{}
	dispatcher := &MockDispatcher{}
	notifications := NewNotificationService(notifRepo, &MockPreferenceRepo{}, dispatcher)
	s := NewTrackerService(repo, lookup, notifications)

	changes, err := s.RefreshOne(context.Background(), stored)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, changes, recorded)
	require.NotNil(t, saved)
	assert.Len(t, saved.IPAddresses, 2)

	// Only the IP change is subscribed; status is off by default.
	created := notifRepo.Created()
	require.Len(t, created, 1)
	assert.Equal(t, domain.NotifyIP, created[0].ChangeType)
	assert.Equal(t, "IP address added: 10.0.0.1", created[0].Message)
	assert.Len(t, dispatcher.messages, 1)
	assert.Empty(t, notifRepo.sent, "no channel configured, nothing is marked sent")
}

func TestTrackerService_RefreshOne_PartialDNSFailure(t *testing.T) {
	stored := trackedDomain()
	stored.DNSRecords = append(stored.DNSRecords, domain.DNSRecord{RecordType: "TXT", RecordValue: "v=spf1 -all"})

	var saved *domain.Domain
	addCalled := false
	repo := &MockDomainRepo{
		updateFunc:     func(d *domain.Domain) error { saved = d; return nil },
		addUpdatesFunc: func([]domain.DomainUpdate) error { addCalled = true; return nil },
	}
	lookup := &MockLookup{lookupFunc: func(name string) (*domain.DomainInfo, error) {
		return &domain.DomainInfo{
			DomainName:  name,
			Registrar:   stored.Registrar,
			ExpiryDate:  stored.ExpiryDate,
			IPAddresses: stored.IPAddresses,
			DNSRecords:  []domain.DNSRecord{{RecordType: "NS", RecordValue: "a.iana-servers.net"}},
			SSL:         stored.SSL,
			Whois:       stored.Whois,
			Statuses:    stored.Statuses,
			Errors:      map[string]string{domain.DNSErrorKey("TXT"): "dns TXT query for example.com: SERVFAIL"},
		}, nil
	}}
	s := NewTrackerService(repo, lookup, nil)

	changes, err := s.RefreshOne(context.Background(), stored)
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.False(t, addCalled)
	require.NotNil(t, saved)
	assert.Contains(t, saved.DNSRecords, domain.DNSRecord{RecordType: "TXT", RecordValue: "v=spf1 -all"})
}

func TestTrackerService_RefreshOne_FirstLookupRecordsNothing(t *testing.T) {
	stored := domain.Domain{ID: uuid.New(), UserID: uuid.New(), DomainName: "fresh.dev"}

	addCalled := false
	repo := &MockDomainRepo{addUpdatesFunc: func([]domain.DomainUpdate) error { addCalled = true; return nil }}
	lookup := &MockLookup{lookupFunc: func(name string) (*domain.DomainInfo, error) {
		return &domain.DomainInfo{DomainName: name, IPAddresses: []domain.IPAddress{{IPAddress: "1.1.1.1"}}}, nil
	}}
	s := NewTrackerService(repo, lookup, nil)

	changes, err := s.RefreshOne(context.Background(), stored)
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.False(t, addCalled)
}

func TestTrackerService_RefreshAll(t *testing.T) {
	domains := []domain.Domain{trackedDomain(), trackedDomain(), trackedDomain()}
	domains[2].DomainName = "broken.example"

	repo := &MockDomainRepo{listAllFunc: func() ([]domain.Domain, error) { return domains, nil }}
	lookup := &MockLookup{lookupFunc: func(name string) (*domain.DomainInfo, error) {
		if name == "broken.example" {
			return nil, errors.New("lookup failed")
		}
		d := trackedDomain()
		return &domain.DomainInfo{
			DomainName: name, Registrar: d.Registrar, ExpiryDate: d.ExpiryDate,
			IPAddresses: d.IPAddresses, DNSRecords: d.DNSRecords, SSL: d.SSL, Whois: d.Whois, Statuses: d.Statuses,
		}, nil
	}}
	s := NewTrackerService(repo, lookup, nil)
	s.Concurrency = 2

	summary, err := s.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Refreshed)
	assert.Equal(t, 0, summary.Changed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, lookup.calls)
}
