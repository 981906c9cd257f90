package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"domain-locker/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type DomainRepository interface {
	Create(ctx context.Context, d *domain.Domain) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Domain, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Domain, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Domain, int64, error)
	// ListAll is used by background jobs and spans every user.
	ListAll(ctx context.Context) ([]domain.Domain, error)
	Update(ctx context.Context, d *domain.Domain) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	ListRegistrars(ctx context.Context, userID uuid.UUID) ([]domain.Registrar, error)
	GetStatistics(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error)

	AddUpdates(ctx context.Context, updates []domain.DomainUpdate) error
	ListUpdates(ctx context.Context, userID, domainID uuid.UUID, limit int) ([]domain.DomainUpdate, error)
}

type TagRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)
	Save(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDomains(ctx context.Context, userID, tagID uuid.UUID, domainIDs []uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	SetRead(ctx context.Context, userID, id uuid.UUID, read bool) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	MarkSent(ctx context.Context, id uuid.UUID) error
	// ExistsSince backs the 24h de-duplication of reminders.
	ExistsSince(ctx context.Context, domainID uuid.UUID, changeType domain.NotificationType, since time.Time) (bool, error)
}

type PreferenceRepository interface {
	// Get returns the defaults when the user never saved preferences.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error)
	Save(ctx context.Context, userID uuid.UUID, prefs domain.UserPreferences) error
}

const pgUniqueViolation = "23505"

// mapError translates driver errors into the domain sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Detail)
	}
	return err
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
