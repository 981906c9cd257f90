package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"domain-locker/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type pgPreferenceRepo struct {
	db *sqlx.DB
}

func NewPostgresPreferenceRepo(db *sqlx.DB) PreferenceRepository {
	return &pgPreferenceRepo{db: db}
}

func (r *pgPreferenceRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	prefs := domain.DefaultPreferences()

	var raw []byte
	err := r.db.GetContext(ctx, &raw, `SELECT preferences FROM user_info WHERE user_id = $1`, userID)
	if errors.Is(mapError(err), domain.ErrNotFound) {
		return &prefs, nil
	}
	if err != nil {
		return nil, err
	}

	// Stored keys overwrite the defaults, missing keys keep them.
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, fmt.Errorf("decoding preferences of %s: %w", userID, err)
	}
	return &prefs, nil
}

func (r *pgPreferenceRepo) Save(ctx context.Context, userID uuid.UUID, prefs domain.UserPreferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_info (user_id, preferences, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (user_id) DO UPDATE SET preferences = EXCLUDED.preferences, updated_at = now()`,
		userID, string(raw))
	return err
}
