package domain

import (
	"time"

	"github.com/google/uuid"
)

// Domain is a tracked domain name together with everything known about it.
type Domain struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	DomainName       string     `db:"domain_name" json:"domain_name"`
	ExpiryDate       *time.Time `db:"expiry_date" json:"expiry_date"`
	RegistrationDate *time.Time `db:"registration_date" json:"registration_date"`
	UpdatedDate      *time.Time `db:"updated_date" json:"updated_date"`
	Notes            string     `db:"notes" json:"notes"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`

	Registrar     *Registrar                `db:"-" json:"registrar,omitempty"`
	IPAddresses   []IPAddress               `db:"-" json:"ip_addresses"`
	DNSRecords    []DNSRecord               `db:"-" json:"dns_records"`
	SSL           *SSLCertificate           `db:"-" json:"ssl,omitempty"`
	Whois         *WhoisInfo                `db:"-" json:"whois,omitempty"`
	Statuses      []string                  `db:"-" json:"statuses"`
	Tags          []string                  `db:"-" json:"tags"`
	Costing       *Costing                  `db:"-" json:"costing,omitempty"`
	Notifications map[NotificationType]bool `db:"-" json:"notifications"`
}

// DaysUntilExpiry returns false when the expiry date is unknown.
func (d Domain) DaysUntilExpiry(now time.Time) (int, bool) {
	if d.ExpiryDate == nil || d.ExpiryDate.IsZero() {
		return 0, false
	}
	return DaysBetween(now, *d.ExpiryDate), true
}

// NotificationEnabled falls back to the type's default when the domain has no explicit preference.
func (d Domain) NotificationEnabled(t NotificationType) bool {
	if enabled, ok := d.Notifications[t]; ok {
		return enabled
	}
	return t.DefaultEnabled()
}

type Registrar struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	URL         string    `db:"url" json:"url"`
	DomainCount int       `db:"domain_count" json:"domain_count"`
}

type IPAddress struct {
	IPAddress string `db:"ip_address" json:"ip_address"`
	IsIPv6    bool   `db:"is_ipv6" json:"is_ipv6"`
}

type DNSRecord struct {
	RecordType  string `db:"record_type" json:"record_type"`
	RecordValue string `db:"record_value" json:"record_value"`
}

type WhoisInfo struct {
	Name         string `db:"name" json:"name"`
	Organization string `db:"organization" json:"organization"`
	Country      string `db:"country" json:"country"`
	Street       string `db:"street" json:"street"`
	City         string `db:"city" json:"city"`
	State        string `db:"state" json:"state"`
	PostalCode   string `db:"postal_code" json:"postal_code"`
}

// Costing is the valuation block shown on the domain page.
type Costing struct {
	PurchasePrice float64 `db:"purchase_price" json:"purchase_price"`
	CurrentValue  float64 `db:"current_value" json:"current_value"`
	RenewalCost   float64 `db:"renewal_cost" json:"renewal_cost"`
	AutoRenew     bool    `db:"auto_renew" json:"auto_renew"`
}

// DomainUpdate is one row of a domain's change history.
type DomainUpdate struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	DomainID   uuid.UUID        `db:"domain_id" json:"domain_id"`
	UserID     uuid.UUID        `db:"user_id" json:"user_id"`
	Change     string           `db:"change" json:"change"`
	ChangeType NotificationType `db:"change_type" json:"change_type"`
	OldValue   string           `db:"old_value" json:"old_value"`
	NewValue   string           `db:"new_value" json:"new_value"`
	Date       time.Time        `db:"date" json:"date"`
}

// ListFilter carries the query-string options of the domain list endpoint.
type ListFilter struct {
	Page      int64
	PageSize  int64
	Search    string
	Tag       string
	Registrar string
	SortBy    string
}

const (
	SortExpiryAsc   = "expiry_asc"
	SortExpiryDesc  = "expiry_desc"
	SortNameAsc     = "name_asc"
	SortNameDesc    = "name_desc"
	SortCreatedDesc = "created_desc"
)

// Normalize clamps paging values.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 25
	}
	if f.PageSize > 1000 {
		f.PageSize = 1000
	}
}

// DaysBetween counts whole calendar days from now until t (negative once t has passed).
func DaysBetween(now, t time.Time) int {
	y1, m1, d1 := now.UTC().Date()
	y2, m2, d2 := t.UTC().Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
