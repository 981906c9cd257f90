package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"domain-locker/internal/domain"
	"domain-locker/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

type CreateDomainRequest struct {
	DomainName    string                           `json:"domain_name"`
	Registrar     string                           `json:"registrar"`
	RegistrarURL  string                           `json:"registrar_url"`
	ExpiryDate    *time.Time                       `json:"expiry_date"`
	Notes         string                           `json:"notes"`
	Tags          []string                         `json:"tags"`
	Notifications map[domain.NotificationType]bool `json:"notifications"`
	Costing       *domain.Costing                  `json:"costing"`
	AutoFill      bool                             `json:"auto_fill"`
}

// UpdateDomainRequest changes only the fields that are present.
type UpdateDomainRequest struct {
	Registrar     *string                          `json:"registrar"`
	ExpiryDate    *time.Time                       `json:"expiry_date"`
	Notes         *string                          `json:"notes"`
	Tags          *[]string                        `json:"tags"`
	Notifications map[domain.NotificationType]bool `json:"notifications"`
	Costing       *domain.Costing                  `json:"costing"`
}

type DomainService struct {
	Repo   repository.DomainRepository
	Lookup DomainLookup
	policy *bluemonday.Policy
}

func NewDomainService(repo repository.DomainRepository, lookup DomainLookup) *DomainService {
	return &DomainService{Repo: repo, Lookup: lookup, policy: bluemonday.StrictPolicy()}
}

// =============================================================================
// Commands
// =============================================================================

func (s *DomainService) Create(ctx context.Context, userID uuid.UUID, req CreateDomainRequest) (*domain.Domain, error) {
	// 1. Validate
	name, err := domain.NormalizeName(req.DomainName)
	if err != nil {
		return nil, err
	}
	tags, err := cleanTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if err := validateNotificationTypes(req.Notifications); err != nil {
		return nil, err
	}

	// 2. Duplicate check (the unique index is the final guard)
	if _, err := s.Repo.GetByName(ctx, userID, name); err == nil {
		return nil, fmt.Errorf("%w: %s is already tracked", domain.ErrConflict, name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	d := &domain.Domain{
		UserID:        userID,
		DomainName:    name,
		Notes:         s.sanitize(req.Notes),
		Tags:          tags,
		Notifications: req.Notifications,
		Costing:       req.Costing,
	}

	// 3. Auto-fill from a live lookup
	if req.AutoFill && s.Lookup != nil {
		info, err := s.Lookup.Lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		info.Apply(d)
		for section, msg := range info.Errors {
			logrus.Warnf("[Domains] Auto-fill %s for %s failed: %s", section, name, msg)
		}
	}

	// 4. Explicit values win over looked-up ones
	if r := strings.TrimSpace(req.Registrar); r != "" {
		d.Registrar = &domain.Registrar{Name: r, URL: req.RegistrarURL}
	}
	if req.ExpiryDate != nil {
		d.ExpiryDate = req.ExpiryDate
	}

	if err := s.Repo.Create(ctx, d); err != nil {
		return nil, err
	}
	logrus.Infof("[Domains] Added %s for %s", name, userID)
	return d, nil
}

func (s *DomainService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateDomainRequest) (*domain.Domain, error) {
	d, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Registrar != nil {
		if r := strings.TrimSpace(*req.Registrar); r != "" {
			d.Registrar = &domain.Registrar{Name: r}
		} else {
			d.Registrar = nil
		}
	}
	if req.ExpiryDate != nil {
		d.ExpiryDate = req.ExpiryDate
	}
	if req.Notes != nil {
		d.Notes = s.sanitize(*req.Notes)
	}
	if req.Tags != nil {
		tags, err := cleanTags(*req.Tags)
		if err != nil {
			return nil, err
		}
		d.Tags = tags
	}
	if req.Notifications != nil {
		if err := validateNotificationTypes(req.Notifications); err != nil {
			return nil, err
		}
		d.Notifications = req.Notifications
	}
	if req.Costing != nil {
		d.Costing = req.Costing
	}

	if err := s.Repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DomainService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.Repo.Delete(ctx, userID, id)
}

// =============================================================================
// Queries
// =============================================================================

func (s *DomainService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Domain, error) {
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *DomainService) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Domain, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetByName(ctx, userID, name)
}

func (s *DomainService) List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Domain, int64, error) {
	filter.Normalize()
	return s.Repo.List(ctx, userID, filter)
}

// ListAll pages through every domain of the user, for exports.
func (s *DomainService) ListAll(ctx context.Context, userID uuid.UUID) ([]domain.Domain, error) {
	filter := domain.ListFilter{Page: 1, PageSize: 1000, SortBy: domain.SortExpiryAsc}
	var all []domain.Domain
	for {
		page, total, err := s.Repo.List(ctx, userID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		filter.Page++
	}
}

func (s *DomainService) History(ctx context.Context, userID, id uuid.UUID, limit int) ([]domain.DomainUpdate, error) {
	if _, err := s.Repo.GetByID(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Repo.ListUpdates(ctx, userID, id, limit)
}

func (s *DomainService) Statistics(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	return s.Repo.GetStatistics(ctx, userID)
}

func (s *DomainService) Registrars(ctx context.Context, userID uuid.UUID) ([]domain.Registrar, error) {
	return s.Repo.ListRegistrars(ctx, userID)
}

// =============================================================================
// Helpers
// =============================================================================

// sanitize strips markup from free-text notes.
func (s *DomainService) sanitize(notes string) string {
	return strings.TrimSpace(s.policy.Sanitize(notes))
}

func cleanTags(tags []string) ([]string, error) {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, name := range tags {
		t := domain.Tag{Name: name}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		out = append(out, t.Name)
	}
	return out, nil
}

func validateNotificationTypes(prefs map[domain.NotificationType]bool) error {
	for t := range prefs {
		if !t.Valid() {
			return domain.NewValidationError("unknown notification type %q", t)
		}
	}
	return nil
}
