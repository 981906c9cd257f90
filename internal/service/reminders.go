package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"domain-locker/internal/domain"
	"domain-locker/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const reminderDedupeWindow = 24 * time.Hour

// ReminderService raises expiry reminders for domains and SSL certificates.
type ReminderService struct {
	Repo          repository.DomainRepository
	Preferences   repository.PreferenceRepository
	Notifications *NotificationService
	Now           func() time.Time
}

func NewReminderService(repo repository.DomainRepository, prefs repository.PreferenceRepository, notifications *NotificationService) *ReminderService {
	return &ReminderService{Repo: repo, Preferences: prefs, Notifications: notifications, Now: time.Now}
}

// Run checks every domain once and returns how many reminders were raised.
func (s *ReminderService) Run(ctx context.Context) (int, error) {
	domains, err := s.Repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	now := s.Now()
	reminderDays := map[uuid.UUID][]int{}
	raised := 0

	for _, d := range domains {
		days, ok := reminderDays[d.UserID]
		if !ok {
			prefs, err := s.Preferences.Get(ctx, d.UserID)
			if err != nil {
				logrus.Warnf("[Reminder] Loading preferences of %s: %v", d.UserID, err)
				days = domain.DefaultReminderDays
			} else {
				days = prefs.ReminderDays
			}
			reminderDays[d.UserID] = days
		}

		// 1. Registration expiry
		if left, known := d.DaysUntilExpiry(now); known && d.NotificationEnabled(domain.NotifyDomainExpiry) && shouldRemind(left, days) {
			msg := expiryMessage("Domain registration", left, *d.ExpiryDate)
			if s.remind(ctx, d, domain.NotifyDomainExpiry, msg, now) {
				raised++
			}
		}

		// 2. SSL certificate expiry
		if d.SSL != nil && !d.SSL.ValidTo.IsZero() && d.NotificationEnabled(domain.NotifySSLExpiry) {
			left := d.SSL.DaysRemaining(now)
			if shouldRemind(left, days) {
				msg := expiryMessage("SSL certificate", left, d.SSL.ValidTo)
				if s.remind(ctx, d, domain.NotifySSLExpiry, msg, now) {
					raised++
				}
			}
		}
	}

	logrus.Infof("[Reminder] Checked %d domains, raised %d reminder(s)", len(domains), raised)
	return raised, nil
}

func (s *ReminderService) remind(ctx context.Context, d domain.Domain, t domain.NotificationType, msg string, now time.Time) bool {
	exists, err := s.Notifications.Repo.ExistsSince(ctx, d.ID, t, now.Add(-reminderDedupeWindow))
	if err != nil {
		logrus.Warnf("[Reminder] Dedupe check for %s: %v", d.DomainName, err)
		return false
	}
	if exists {
		return false
	}

	domainID := d.ID
	n := &domain.Notification{
		UserID:     d.UserID,
		DomainID:   &domainID,
		DomainName: d.DomainName,
		ChangeType: t,
		Message:    msg,
		CreatedAt:  now.UTC(),
	}
	if err := s.Notifications.Raise(ctx, n); err != nil {
		logrus.Errorf("[Reminder] Saving reminder for %s: %v", d.DomainName, err)
		return false
	}
	return true
}

// shouldRemind is true on the configured threshold days and every day after expiry.
func shouldRemind(daysLeft int, thresholds []int) bool {
	return daysLeft < 0 || slices.Contains(thresholds, daysLeft)
}

func expiryMessage(subject string, daysLeft int, at time.Time) string {
	date := at.UTC().Format("2006-01-02")
	switch {
	case daysLeft < 0:
		return fmt.Sprintf("%s expired %d day(s) ago (%s)", subject, -daysLeft, date)
	case daysLeft == 0:
		return fmt.Sprintf("%s expires today (%s)", subject, date)
	}
	return fmt.Sprintf("%s expires in %d day(s) (%s)", subject, daysLeft, date)
}
