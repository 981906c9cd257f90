package service

import (
	"context"
	"errors"
	"testing"

	"domain-locker/internal/domain"

	"github.com/cloudflare/cloudflare-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeZoneLister struct {
	zones []cloudflare.Zone
	err   error
}

func (f *fakeZoneLister) ListZones(ctx context.Context, z ...string) ([]cloudflare.Zone, error) {
	return f.zones, f.err
}

func TestCloudflareService_ImportZones(t *testing.T) {
	userID := uuid.New()

	var created []*domain.Domain
	repo := &MockDomainRepo{createFunc: func(d *domain.Domain) error {
		if d.DomainName == "tracked.com" {
			return domain.ErrConflict
		}
		created = append(created, d)
		return nil
	}}

	var usedToken string
	s := NewCloudflareService("configured-token", repo)
	s.newClient = func(token string) (zoneLister, error) {
		usedToken = token
		return &fakeZoneLister{zones: []cloudflare.Zone{
			{Name: "example.com", NameServers: []string{"ada.ns.cloudflare.com", "bob.ns.cloudflare.com."}},
			{Name: "tracked.com"},
			{Name: "not a zone"},
		}}, nil
	}

	result, err := s.ImportZones(context.Background(), userID, "")
	require.NoError(t, err)
	assert.Equal(t, "configured-token", usedToken)
	assert.Equal(t, []string{"example.com"}, result.Added)
	assert.Equal(t, []string{"tracked.com", "not a zone"}, result.Skipped)

	require.Len(t, created, 1)
	assert.Equal(t, userID, created[0].UserID)
	assert.Equal(t, []domain.DNSRecord{
		{RecordType: "NS", RecordValue: "ada.ns.cloudflare.com"},
		{RecordType: "NS", RecordValue: "bob.ns.cloudflare.com"},
	}, created[0].DNSRecords)

	_, err = s.ImportZones(context.Background(), userID, " request-token ")
	require.NoError(t, err)
	assert.Equal(t, "request-token", usedToken)
}

func TestCloudflareService_ImportZonesErrors(t *testing.T) {
	s := NewCloudflareService("", &MockDomainRepo{})
	_, err := s.ImportZones(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	s.newClient = func(string) (zoneLister, error) {
		return &fakeZoneLister{err: errors.New("Invalid request headers (6003)")}, nil
	}
	_, err = s.ImportZones(context.Background(), uuid.New(), "token")
	assert.EqualError(t, err, "Invalid request headers (6003)")
}
