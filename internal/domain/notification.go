package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifyDomainExpiry NotificationType = "domain_expiry"
	NotifySSLExpiry    NotificationType = "ssl_expiry"
	NotifyRegistrar    NotificationType = "registrar"
	NotifyWhois        NotificationType = "whois"
	NotifyDNS          NotificationType = "dns"
	NotifyIP           NotificationType = "ip"
	NotifySSL          NotificationType = "ssl"
	NotifyStatus       NotificationType = "status"
)

var AllNotificationTypes = []NotificationType{
	NotifyDomainExpiry, NotifySSLExpiry, NotifyRegistrar, NotifyWhois,
	NotifyDNS, NotifyIP, NotifySSL, NotifyStatus,
}

func (t NotificationType) Valid() bool {
	for _, known := range AllNotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DefaultEnabled: expiry reminders are on unless the user turns them off.
func (t NotificationType) DefaultEnabled() bool {
	return t == NotifyDomainExpiry || t == NotifySSLExpiry
}

type Notification struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	UserID     uuid.UUID        `db:"user_id" json:"user_id"`
	DomainID   *uuid.UUID       `db:"domain_id" json:"domain_id"`
	DomainName string           `db:"domain_name" json:"domain_name,omitempty"`
	ChangeType NotificationType `db:"change_type" json:"change_type"`
	Message    string           `db:"message" json:"message"`
	Sent       bool             `db:"sent" json:"sent"`
	Read       bool             `db:"read" json:"read"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
