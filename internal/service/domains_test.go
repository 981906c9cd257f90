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

func TestDomainService_Create(t *testing.T) {
	userID := uuid.New()
	lookedUpExpiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	explicitExpiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	lookup := &MockLookup{lookupFunc: func(name string) (*domain.DomainInfo, error) {
		return &domain.DomainInfo{
			DomainName:  name,
			Registrar:   &domain.Registrar{Name: "Gandi"},
			ExpiryDate:  &lookedUpExpiry,
			IPAddresses: []domain.IPAddress{{IPAddress: "1.2.3.4"}},
			DNSRecords:  []domain.DNSRecord{},
			Statuses:    []string{"ok"},
		}, nil
	}}

	testCases := []struct {
		name      string
		req       CreateDomainRequest
		existing  bool
		wantErr   error
		wantCalls int
		check     func(t *testing.T, d *domain.Domain)
	}{
		{
			name: "plain",
			req:  CreateDomainRequest{DomainName: "https://Example.com/", Notes: `<script>alert(1)</script>renew early`, Tags: []string{" work ", "work", "side"}},
			check: func(t *testing.T, d *domain.Domain) {
				assert.Equal(t, "example.com", d.DomainName)
				assert.Equal(t, "renew early", d.Notes)
				assert.Equal(t, []string{"work", "side"}, d.Tags)
				assert.Nil(t, d.Registrar)
			},
		},
		{
			name:      "auto fill",
			req:       CreateDomainRequest{DomainName: "example.com", AutoFill: true},
			wantCalls: 1,
			check: func(t *testing.T, d *domain.Domain) {
				require.NotNil(t, d.Registrar)
				assert.Equal(t, "Gandi", d.Registrar.Name)
				assert.Equal(t, lookedUpExpiry, *d.ExpiryDate)
				assert.Len(t, d.IPAddresses, 1)
			},
		},
		{
			name:      "explicit values win over auto fill",
			req:       CreateDomainRequest{DomainName: "example.com", AutoFill: true, Registrar: "Porkbun", ExpiryDate: &explicitExpiry},
			wantCalls: 1,
			check: func(t *testing.T, d *domain.Domain) {
				assert.Equal(t, "Porkbun", d.Registrar.Name)
				assert.Equal(t, explicitExpiry, *d.ExpiryDate)
			},
		},
		{name: "duplicate", req: CreateDomainRequest{DomainName: "example.com"}, existing: true, wantErr: domain.ErrConflict},
		{name: "invalid name", req: CreateDomainRequest{DomainName: "localhost"}, wantErr: domain.ErrValidation},
		{name: "empty tag", req: CreateDomainRequest{DomainName: "example.com", Tags: []string{" "}}, wantErr: domain.ErrValidation},
		{
			name:    "unknown notification type",
			req:     CreateDomainRequest{DomainName: "example.com", Notifications: map[domain.NotificationType]bool{"carrier_pigeon": true}},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lookup.calls = 0
			var created *domain.Domain
			repo := &MockDomainRepo{
				getByNameFunc: func(_ uuid.UUID, name string) (*domain.Domain, error) {
					if tc.existing {
						return &domain.Domain{DomainName: name}, nil
					}
					return nil, domain.ErrNotFound
				},
				createFunc: func(d *domain.Domain) error { created = d; return nil },
			}
			s := NewDomainService(repo, lookup)

			d, err := s.Create(context.Background(), userID, tc.req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			assert.Same(t, created, d)
			assert.Equal(t, userID, d.UserID)
			assert.Equal(t, tc.wantCalls, lookup.calls)
			tc.check(t, d)
		})
	}
}

func TestDomainService_Update(t *testing.T) {
	userID, id := uuid.New(), uuid.New()
	stored := &domain.Domain{ID: id, UserID: userID, DomainName: "example.com", Notes: "old", Tags: []string{"a"}, Registrar: &domain.Registrar{Name: "Gandi"}}

	var saved *domain.Domain
	repo := &MockDomainRepo{
		getByIDFunc: func(_, gotID uuid.UUID) (*domain.Domain, error) {
			if gotID != id {
				return nil, domain.ErrNotFound
			}
			copied := *stored
			return &copied, nil
		},
		updateFunc: func(d *domain.Domain) error { saved = d; return nil },
	}
	s := NewDomainService(repo, nil)

	notes := "<b>new</b> notes"
	tags := []string{"b"}
	d, err := s.Update(context.Background(), userID, id, UpdateDomainRequest{Notes: &notes, Tags: &tags})
	require.NoError(t, err)
	assert.Same(t, saved, d)
	assert.Equal(t, "new notes", d.Notes)
	assert.Equal(t, []string{"b"}, d.Tags)
	assert.Equal(t, "Gandi", d.Registrar.Name, "absent fields are untouched")

	empty := ""
	d, err = s.Update(context.Background(), userID, id, UpdateDomainRequest{Registrar: &empty})
	require.NoError(t, err)
	assert.Nil(t, d.Registrar)

	_, err = s.Update(context.Background(), userID, uuid.New(), UpdateDomainRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDomainService_ListAll(t *testing.T) {
	var pages []int64
	repo := &MockDomainRepo{listFunc: func(_ uuid.UUID, f domain.ListFilter) ([]domain.Domain, int64, error) {
		pages = append(pages, f.Page)
		if f.Page > 2 {
			return nil, 0, errors.New("unexpected page")
		}
		batch := make([]domain.Domain, 1000)
		if f.Page == 2 {
			batch = batch[:500]
		}
		return batch, 1500, nil
	}}
	s := NewDomainService(repo, nil)

	all, err := s.ListAll(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, all, 1500)
	assert.Equal(t, []int64{1, 2}, pages)
}

func TestDomainService_History(t *testing.T) {
	s := NewDomainService(&MockDomainRepo{}, nil)
	_, err := s.History(context.Background(), uuid.New(), uuid.New(), 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
