package service

import (
	"context"
	"encoding/json"

	"domain-locker/internal/domain"
	"domain-locker/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TestSender delivers a test message synchronously.
type TestSender interface {
	SendTest(ctx context.Context, prefs domain.UserPreferences) error
}

type PreferenceService struct {
	Repo     repository.PreferenceRepository
	Notifier TestSender
}

func NewPreferenceService(repo repository.PreferenceRepository, notifier TestSender) *PreferenceService {
	return &PreferenceService{Repo: repo, Notifier: notifier}
}

func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	return s.Repo.Get(ctx, userID)
}

// Update merges the JSON patch into the stored preferences; keys missing from the
// patch keep their stored value.
func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, patch []byte) (*domain.UserPreferences, error) {
	prefs, err := s.merged(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, userID, *prefs); err != nil {
		return nil, err
	}
	logrus.Infof("[Preferences] Saved for %s | Webhook: %v | Telegram: %v", userID, prefs.WebhookEnabled, prefs.TelegramEnabled)
	return prefs, nil
}

// SendTest applies the optional patch without saving it and sends a test message.
func (s *PreferenceService) SendTest(ctx context.Context, userID uuid.UUID, patch []byte) error {
	prefs, err := s.merged(ctx, userID, patch)
	if err != nil {
		return err
	}
	return s.Notifier.SendTest(ctx, *prefs)
}

func (s *PreferenceService) merged(ctx context.Context, userID uuid.UUID, patch []byte) (*domain.UserPreferences, error) {
	prefs, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(patch) > 0 {
		stored := *prefs
		if err := json.Unmarshal(patch, prefs); err != nil {
			return nil, domain.NewValidationError("invalid JSON: %v", err)
		}
		// A masked secret echoed back by the client means "unchanged"
		if prefs.WebhookPassword == domain.SecretMask {
			prefs.WebhookPassword = stored.WebhookPassword
		}
		if prefs.TelegramBotToken == domain.SecretMask {
			prefs.TelegramBotToken = stored.TelegramBotToken
		}
	}
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	return prefs, nil
}
