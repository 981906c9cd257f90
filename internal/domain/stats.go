package domain

type DashboardStats struct {
	TotalDomains   int64          `json:"total_domains"`
	TotalTags      int64          `json:"total_tags"`
	ExpiryCounts   map[string]int `json:"expiry_counts"` // "expired", "<7", "<30", "<90"
	RegistrarCount map[string]int `json:"registrar_counts"`
	TagCounts      map[string]int `json:"tag_counts"`
	IssuerCounts   map[string]int `json:"issuer_counts"`
	UnreadAlerts   int64          `json:"unread_notifications"`
}

func NewDashboardStats() *DashboardStats {
	return &DashboardStats{
		ExpiryCounts:   make(map[string]int),
		RegistrarCount: make(map[string]int),
		TagCounts:      make(map[string]int),
		IssuerCounts:   make(map[string]int),
	}
}

// ExpiryBucket returns the bucket a domain falls into, or "" for more than 90 days.
func ExpiryBucket(daysLeft int) string {
	switch {
	case daysLeft < 0:
		return "expired"
	case daysLeft < 7:
		return "<7"
	case daysLeft < 30:
		return "<30"
	case daysLeft < 90:
		return "<90"
	}
	return ""
}
