package service

import (
	"context"

	"domain-locker/internal/domain"
	"domain-locker/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dispatcher hands a rendered notification to the user's delivery channels.
type Dispatcher interface {
	Notify(prefs domain.UserPreferences, data MessageData) bool
}

type NotificationService struct {
	Repo        repository.NotificationRepository
	Preferences repository.PreferenceRepository
	Notifier    Dispatcher
}

func NewNotificationService(repo repository.NotificationRepository, prefs repository.PreferenceRepository, notifier Dispatcher) *NotificationService {
	return &NotificationService{Repo: repo, Preferences: prefs, Notifier: notifier}
}

// Raise stores the notification and queues it for delivery. A delivery problem
// never fails the call; the in-app notification is the source of truth.
func (s *NotificationService) Raise(ctx context.Context, n *domain.Notification) error {
	if err := s.Repo.Create(ctx, n); err != nil {
		return err
	}
	if s.Notifier == nil {
		return nil
	}

	prefs, err := s.Preferences.Get(ctx, n.UserID)
	if err != nil {
		logrus.Warnf("[Notify] Loading preferences of %s: %v", n.UserID, err)
		return nil
	}
	queued := s.Notifier.Notify(*prefs, MessageData{
		Domain:  n.DomainName,
		Type:    string(n.ChangeType),
		Message: n.Message,
		Time:    n.CreatedAt.Format("2006-01-02 15:04:05"),
	})
	if queued {
		if err := s.Repo.MarkSent(ctx, n.ID); err != nil {
			logrus.Warnf("[Notify] Marking %s sent: %v", n.ID, err)
		}
		n.Sent = true
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]domain.Notification, error) {
	return s.Repo.List(ctx, userID, filter)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.Repo.CountUnread(ctx, userID)
}

func (s *NotificationService) SetRead(ctx context.Context, userID, id uuid.UUID, read bool) error {
	return s.Repo.SetRead(ctx, userID, id, read)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.Repo.Delete(ctx, userID, id)
}
