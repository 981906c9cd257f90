package repository

import (
	"context"
	"time"

	"domain-locker/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type pgNotificationRepo struct {
	db *sqlx.DB
}

func NewPostgresNotificationRepo(db *sqlx.DB) NotificationRepository {
	return &pgNotificationRepo{db: db}
}

func (r *pgNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notifications (id, user_id, domain_id, change_type, message, sent, read, created_at)
		VALUES (:id, :user_id, :domain_id, :change_type, :message, :sent, :read, :created_at)`, n)
	return mapError(err)
}

func (r *pgNotificationRepo) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]domain.Notification, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query := `
		SELECT n.id, n.user_id, n.domain_id, COALESCE(d.domain_name, '') AS domain_name,
		       n.change_type, n.message, n.sent, n.read, n.created_at
		FROM notifications n
		LEFT JOIN domains d ON d.id = n.domain_id
		WHERE n.user_id = $1`
	if filter.UnreadOnly {
		query += ` AND NOT n.read`
	}
	query += ` ORDER BY n.created_at DESC LIMIT $2 OFFSET $3`

	list := []domain.Notification{}
	err := r.db.SelectContext(ctx, &list, query, userID, filter.Limit, filter.Offset)
	return list, err
}

func (r *pgNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID)
	return count, err
}

func (r *pgNotificationRepo) SetRead(ctx context.Context, userID, id uuid.UUID, read bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = $3 WHERE id = $1 AND user_id = $2`, id, userID, read)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *pgNotificationRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgNotificationRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET sent = true WHERE id = $1`, id)
	return err
}

func (r *pgNotificationRepo) ExistsSince(ctx context.Context, domainID uuid.UUID, changeType domain.NotificationType, since time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE domain_id = $1 AND change_type = $2 AND created_at >= $3
		)`, domainID, string(changeType), since)
	return exists, err
}
