package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"domain-locker/internal/domain"
	"domain-locker/internal/repository"

	"github.com/sirupsen/logrus"
)

// TrackerService refreshes stored domains from live lookups and records what changed.
type TrackerService struct {
	Repo          repository.DomainRepository
	Lookup        DomainLookup
	Notifications *NotificationService
	Concurrency   int
}

func NewTrackerService(repo repository.DomainRepository, lookup DomainLookup, notifications *NotificationService) *TrackerService {
	return &TrackerService{Repo: repo, Lookup: lookup, Notifications: notifications, Concurrency: 10}
}

type RefreshSummary struct {
	Total     int    `json:"total"`
	Refreshed int    `json:"refreshed"`
	Changed   int    `json:"changed"`
	Failed    int    `json:"failed"`
	Duration  string `json:"duration"`
}

// =============================================================================
// Public Methods
// =============================================================================

// RefreshAll refreshes every tracked domain of every user with a bounded worker pool.
func (s *TrackerService) RefreshAll(ctx context.Context) (RefreshSummary, error) {
	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	// 1. Load everything
	domains, err := s.Repo.ListAll(refreshCtx)
	if err != nil {
		logrus.Errorf("[Tracker] Loading domains failed: %v", err)
		return RefreshSummary{}, err
	}

	total := len(domains)
	summary := RefreshSummary{Total: total}
	startTime := time.Now()
	logrus.Infof("[Tracker] Refreshing %d domains...", total)

	// 2. Worker pool
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var processed int32

Loop:
	for _, d := range domains {
		select {
		case <-refreshCtx.Done():
			logrus.Warn("[Tracker] Time limit reached, not starting more refreshes")
			break Loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(target domain.Domain) {
			defer wg.Done()
			defer func() { <-sem }()

			changes, err := s.RefreshOne(refreshCtx, target)

			mu.Lock()
			switch {
			case err != nil:
				summary.Failed++
			case len(changes) > 0:
				summary.Refreshed++
				summary.Changed++
			default:
				summary.Refreshed++
			}
			mu.Unlock()

			if err != nil {
				logrus.Errorf("[Tracker] %s: %v", target.DomainName, err)
			}
			current := atomic.AddInt32(&processed, 1)
			if current%5 == 0 || int(current) == total {
				logrus.Infof("[Tracker] Progress: %d/%d (%.1f%%)", current, total, float64(current)/float64(total)*100)
			}
		}(d)
	}

	wg.Wait()

	// 3. Summary
	summary.Duration = time.Since(startTime).String()
	logrus.Infof("[Tracker] Refresh finished: %d refreshed, %d changed, %d failed in %s",
		summary.Refreshed, summary.Changed, summary.Failed, summary.Duration)
	return summary, nil
}

// RefreshOne looks the domain up, persists the fresh values and records the
// differences as history rows and notifications.
func (s *TrackerService) RefreshOne(ctx context.Context, stored domain.Domain) ([]domain.DomainUpdate, error) {
	// 1. Live lookup
	info, err := s.Lookup.Lookup(ctx, stored.DomainName)
	if err != nil {
		return nil, err
	}

	// 2. Merge
	fresh := stored
	info.Apply(&fresh)

	// 3. Diff. A domain that never had lookup data is being initialised, not changed.
	var changes []domain.DomainUpdate
	if !neverLookedUp(stored) {
		changes = generateDiff(stored, fresh)
	}

	// 4. Persist
	if err := s.Repo.Update(ctx, &fresh); err != nil {
		return nil, fmt.Errorf("saving %s: %w", stored.DomainName, err)
	}
	if len(changes) == 0 {
		return nil, nil
	}
	if err := s.Repo.AddUpdates(ctx, changes); err != nil {
		return changes, fmt.Errorf("recording changes of %s: %w", stored.DomainName, err)
	}

	// 5. Notify for the change types the domain subscribed to
	if s.Notifications != nil {
		for _, c := range changes {
			if !stored.NotificationEnabled(c.ChangeType) {
				continue
			}
			domainID := stored.ID
			n := &domain.Notification{
				UserID:     stored.UserID,
				DomainID:   &domainID,
				DomainName: stored.DomainName,
				ChangeType: c.ChangeType,
				Message:    describeChange(c),
			}
			if err := s.Notifications.Raise(ctx, n); err != nil {
				logrus.Warnf("[Tracker] Raising notification for %s: %v", stored.DomainName, err)
			}
		}
	}

	logrus.Infof("[Tracker] %s: %d change(s)", stored.DomainName, len(changes))
	return changes, nil
}

// =============================================================================
// Diff
// =============================================================================

func neverLookedUp(d domain.Domain) bool {
	return d.ExpiryDate == nil && d.SSL == nil && len(d.IPAddresses) == 0 && len(d.DNSRecords) == 0
}

// generateDiff returns one history row per changed aspect; equal input yields none.
func generateDiff(old, fresh domain.Domain) []domain.DomainUpdate {
	var changes []domain.DomainUpdate
	add := func(t domain.NotificationType, change, oldValue, newValue string) {
		changes = append(changes, domain.DomainUpdate{
			DomainID:   old.ID,
			UserID:     old.UserID,
			Change:     change,
			ChangeType: t,
			OldValue:   oldValue,
			NewValue:   newValue,
		})
	}

	// 1. Registrar
	if oldName, newName := registrarName(old.Registrar), registrarName(fresh.Registrar); oldName != newName {
		add(domain.NotifyRegistrar, "Registrar changed", oldName, newName)
	}

	// 2. Expiry date (a later date is a renewal)
	if oldDate, newDate := formatDate(old.ExpiryDate), formatDate(fresh.ExpiryDate); oldDate != newDate {
		add(domain.NotifyDomainExpiry, "Expiry date changed", oldDate, newDate)
	}

	// 3. IP addresses
	added, removed := diffStrings(ipStrings(old.IPAddresses), ipStrings(fresh.IPAddresses))
	for _, ip := range added {
		add(domain.NotifyIP, "IP address added", "", ip)
	}
	for _, ip := range removed {
		add(domain.NotifyIP, "IP address removed", ip, "")
	}

	// 4. DNS records
	added, removed = diffStrings(recordStrings(old.DNSRecords), recordStrings(fresh.DNSRecords))
	for _, rec := range added {
		add(domain.NotifyDNS, "DNS record added", "", rec)
	}
	for _, rec := range removed {
		add(domain.NotifyDNS, "DNS record removed", rec, "")
	}

	// 5. SSL certificate
	switch {
	case old.SSL == nil && fresh.SSL != nil:
		add(domain.NotifySSL, "SSL certificate added", "", fresh.SSL.Issuer)
	case old.SSL != nil && fresh.SSL == nil:
		add(domain.NotifySSL, "SSL certificate removed", old.SSL.Issuer, "")
	case old.SSL != nil && fresh.SSL != nil:
		if old.SSL.Issuer != fresh.SSL.Issuer {
			add(domain.NotifySSL, "SSL issuer changed", old.SSL.Issuer, fresh.SSL.Issuer)
		}
		if !old.SSL.ValidTo.Equal(fresh.SSL.ValidTo) {
			add(domain.NotifySSL, "SSL certificate renewed",
				old.SSL.ValidTo.Format("2006-01-02"), fresh.SSL.ValidTo.Format("2006-01-02"))
		}
	}

	// 6. EPP statuses
	added, removed = diffStrings(old.Statuses, fresh.Statuses)
	for _, st := range added {
		add(domain.NotifyStatus, "Status added", "", st)
	}
	for _, st := range removed {
		add(domain.NotifyStatus, "Status removed", st, "")
	}

	// 7. WHOIS registrant
	var oldWhois, newWhois domain.WhoisInfo
	if old.Whois != nil {
		oldWhois = *old.Whois
	}
	if fresh.Whois != nil {
		newWhois = *fresh.Whois
	}
	if oldWhois.Organization != newWhois.Organization {
		add(domain.NotifyWhois, "Registrant organization changed", oldWhois.Organization, newWhois.Organization)
	}
	if oldWhois.Country != newWhois.Country {
		add(domain.NotifyWhois, "Registrant country changed", oldWhois.Country, newWhois.Country)
	}

	return changes
}

func describeChange(c domain.DomainUpdate) string {
	switch {
	case c.OldValue == "":
		return fmt.Sprintf("%s: %s", c.Change, c.NewValue)
	case c.NewValue == "":
		return fmt.Sprintf("%s: %s", c.Change, c.OldValue)
	}
	return fmt.Sprintf("%s: %s ➔ %s", c.Change, c.OldValue, c.NewValue)
}

func registrarName(r *domain.Registrar) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func ipStrings(ips []domain.IPAddress) []string {
	out := make([]string, len(ips))
	for i, ip := range ips {
		out[i] = ip.IPAddress
	}
	return out
}

func recordStrings(records []domain.DNSRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RecordType + " " + r.RecordValue
	}
	return out
}

func diffStrings(oldList, newList []string) (added []string, removed []string) {
	oldMap := make(map[string]bool, len(oldList))
	newMap := make(map[string]bool, len(newList))
	for _, v := range oldList {
		oldMap[v] = true
	}
	for _, v := range newList {
		newMap[v] = true
	}
	for _, v := range newList {
		if !oldMap[v] {
			added = append(added, v)
		}
	}
	for _, v := range oldList {
		if !newMap[v] {
			removed = append(removed, v)
		}
	}
	return
}
