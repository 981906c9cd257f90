package repository

import (
	"context"

	"domain-locker/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type pgTagRepo struct {
	db *sqlx.DB
}

func NewPostgresTagRepo(db *sqlx.DB) TagRepository {
	return &pgTagRepo{db: db}
}

const selectTags = `
SELECT t.id, t.user_id, t.name, t.color, t.icon, t.description, COUNT(dt.domain_id) AS domain_count
FROM tags t
LEFT JOIN domain_tags dt ON dt.tag_id = t.id`

func (r *pgTagRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	tags := []domain.Tag{}
	err := r.db.SelectContext(ctx, &tags, selectTags+` WHERE t.user_id = $1 GROUP BY t.id ORDER BY t.name`, userID)
	return tags, err
}

func (r *pgTagRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := r.db.GetContext(ctx, &tag, selectTags+` WHERE t.user_id = $1 AND t.name = $2 GROUP BY t.id`, userID, name)
	if err != nil {
		return nil, mapError(err)
	}
	return &tag, nil
}

// Save inserts a tag without an ID and updates one that has it.
func (r *pgTagRepo) Save(ctx context.Context, tag *domain.Tag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
		_, err := r.db.NamedExecContext(ctx, `
			INSERT INTO tags (id, user_id, name, color, icon, description)
			VALUES (:id, :user_id, :name, :color, :icon, :description)`, tag)
		return mapError(err)
	}

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE tags SET name = :name, color = :color, icon = :icon, description = :description
		WHERE id = :id AND user_id = :user_id`, tag)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgTagRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDomains replaces the set of domains carrying the tag. Domains owned by other users are ignored.
func (r *pgTagRepo) SetDomains(ctx context.Context, userID, tagID uuid.UUID, domainIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var owner uuid.UUID
	if err := tx.GetContext(ctx, &owner, `SELECT user_id FROM tags WHERE id = $1`, tagID); err != nil {
		return mapError(err)
	}
	if owner != userID {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_tags WHERE tag_id = $1`, tagID); err != nil {
		return err
	}
	if len(domainIDs) > 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO domain_tags (domain_id, tag_id)
			SELECT d.id, $1 FROM domains d
			WHERE d.user_id = $2 AND d.id = ANY($3::uuid[])`,
			tagID, userID, uuidStrings(domainIDs)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
