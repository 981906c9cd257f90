package service

import (
	"context"
	"errors"
	"strings"

	"domain-locker/internal/domain"
	"domain-locker/internal/repository"

	"github.com/cloudflare/cloudflare-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type zoneLister interface {
	ListZones(ctx context.Context, z ...string) ([]cloudflare.Zone, error)
}

// CloudflareService imports the zones of a Cloudflare account as tracked domains.
type CloudflareService struct {
	APIToken string
	Repo     repository.DomainRepository

	newClient func(token string) (zoneLister, error)
}

func NewCloudflareService(token string, repo repository.DomainRepository) *CloudflareService {
	return &CloudflareService{
		APIToken: token,
		Repo:     repo,
		newClient: func(token string) (zoneLister, error) {
			return cloudflare.NewWithAPIToken(token)
		},
	}
}

type ImportResult struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

// ImportZones adds every zone the token can see that the user does not track yet,
// with the zone's name servers as NS records. token overrides the configured one.
func (s *CloudflareService) ImportZones(ctx context.Context, userID uuid.UUID, token string) (*ImportResult, error) {
	if token = strings.TrimSpace(token); token == "" {
		token = s.APIToken
	}
	if token == "" {
		return nil, domain.NewValidationError("a Cloudflare API token is required")
	}

	api, err := s.newClient(token)
	if err != nil {
		return nil, err
	}

	// 1. Zones
	zones, err := api.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	logrus.Infof("[Cloudflare] %d zone(s) found", len(zones))

	// 2. Create the missing ones
	result := &ImportResult{Added: []string{}, Skipped: []string{}}
	for _, zone := range zones {
		name, err := domain.NormalizeName(zone.Name)
		if err != nil {
			logrus.Warnf("[Cloudflare] Skipping zone %q: %v", zone.Name, err)
			result.Skipped = append(result.Skipped, zone.Name)
			continue
		}

		d := &domain.Domain{UserID: userID, DomainName: name, DNSRecords: []domain.DNSRecord{}}
		for _, ns := range zone.NameServers {
			d.DNSRecords = append(d.DNSRecords, domain.DNSRecord{RecordType: "NS", RecordValue: strings.TrimSuffix(ns, ".")})
		}

		err = s.Repo.Create(ctx, d)
		switch {
		case errors.Is(err, domain.ErrConflict):
			result.Skipped = append(result.Skipped, name)
		case err != nil:
			return result, err
		default:
			result.Added = append(result.Added, name)
		}
	}

	logrus.Infof("[Cloudflare] Import done: %d added, %d skipped", len(result.Added), len(result.Skipped))
	return result, nil
}
