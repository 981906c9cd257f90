package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"domain-locker/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type pgDomainRepo struct {
	db *sqlx.DB
}

func NewPostgresDomainRepo(db *sqlx.DB) DomainRepository {
	return &pgDomainRepo{db: db}
}

const selectDomains = `
SELECT d.id, d.user_id, d.domain_name, d.expiry_date, d.registration_date, d.updated_date,
       d.notes, d.created_at, d.updated_at,
       r.id AS registrar_id, r.name AS registrar_name, r.url AS registrar_url
FROM domains d
LEFT JOIN registrars r ON r.id = d.registrar_id`

// domainRow is a domains row joined with its registrar.
type domainRow struct {
	domain.Domain
	RegistrarID   uuid.NullUUID  `db:"registrar_id"`
	RegistrarName sql.NullString `db:"registrar_name"`
	RegistrarURL  sql.NullString `db:"registrar_url"`
}

func (row domainRow) toDomain() domain.Domain {
	d := row.Domain
	if row.RegistrarID.Valid {
		d.Registrar = &domain.Registrar{
			ID:     row.RegistrarID.UUID,
			UserID: d.UserID,
			Name:   row.RegistrarName.String,
			URL:    row.RegistrarURL.String,
		}
	}
	return d
}

// ==========================================
// Writes
// ==========================================

// Create inserts the domain with all of its child rows in one transaction.
func (r *pgDomainRepo) Create(ctx context.Context, d *domain.Domain) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		registrarID, err := upsertRegistrar(ctx, tx, d.UserID, d.Registrar)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO domains (id, user_id, domain_name, registrar_id, expiry_date, registration_date,
			                     updated_date, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			d.ID, d.UserID, d.DomainName, registrarID, d.ExpiryDate, d.RegistrationDate,
			d.UpdatedDate, d.Notes, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return mapError(err)
		}
		return writeChildren(ctx, tx, d)
	})
}

// Update rewrites the domain row and replaces every child collection with what d carries.
func (r *pgDomainRepo) Update(ctx context.Context, d *domain.Domain) error {
	d.UpdatedAt = time.Now().UTC()

	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		registrarID, err := upsertRegistrar(ctx, tx, d.UserID, d.Registrar)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE domains
			SET registrar_id = $3, expiry_date = $4, registration_date = $5, updated_date = $6,
			    notes = $7, updated_at = $8
			WHERE id = $1 AND user_id = $2`,
			d.ID, d.UserID, registrarID, d.ExpiryDate, d.RegistrationDate, d.UpdatedDate,
			d.Notes, d.UpdatedAt)
		if err != nil {
			return mapError(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return writeChildren(ctx, tx, d)
	})
}

func (r *pgDomainRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM domains WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgDomainRepo) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func upsertRegistrar(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, reg *domain.Registrar) (*uuid.UUID, error) {
	if reg == nil || strings.TrimSpace(reg.Name) == "" {
		return nil, nil
	}
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `
		INSERT INTO registrars (id, user_id, name, url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE
		SET url = CASE WHEN EXCLUDED.url <> '' THEN EXCLUDED.url ELSE registrars.url END
		RETURNING id`,
		uuid.New(), userID, strings.TrimSpace(reg.Name), reg.URL)
	if err != nil {
		return nil, fmt.Errorf("saving registrar: %w", mapError(err))
	}
	reg.ID = id
	return &id, nil
}

// writeChildren replaces the one-to-many and one-to-one tables hanging off a domain.
func writeChildren(ctx context.Context, tx *sqlx.Tx, d *domain.Domain) error {
	// 1. IP addresses
	if _, err := tx.ExecContext(ctx, `DELETE FROM ip_addresses WHERE domain_id = $1`, d.ID); err != nil {
		return err
	}
	for _, ip := range d.IPAddresses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ip_addresses (domain_id, ip_address, is_ipv6) VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, d.ID, ip.IPAddress, ip.IsIPv6); err != nil {
			return fmt.Errorf("saving ip address: %w", err)
		}
	}

	// 2. DNS records
	if _, err := tx.ExecContext(ctx, `DELETE FROM dns_records WHERE domain_id = $1`, d.ID); err != nil {
		return err
	}
	for _, rec := range d.DNSRecords {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dns_records (domain_id, record_type, record_value) VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, d.ID, rec.RecordType, rec.RecordValue); err != nil {
			return fmt.Errorf("saving dns record: %w", err)
		}
	}

	// 3. Statuses
	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_statuses WHERE domain_id = $1`, d.ID); err != nil {
		return err
	}
	for _, status := range d.Statuses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO domain_statuses (domain_id, status_code) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, d.ID, status); err != nil {
			return fmt.Errorf("saving status: %w", err)
		}
	}

	// 4. SSL, whois and costing are one-to-one
	if _, err := tx.ExecContext(ctx, `DELETE FROM ssl_certificates WHERE domain_id = $1`, d.ID); err != nil {
		return err
	}
	if c := d.SSL; c != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ssl_certificates (domain_id, issuer, issuer_country, subject, valid_from, valid_to,
			                              fingerprint, key_size, signature_algorithm)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			d.ID, c.Issuer, c.IssuerCountry, c.Subject, c.ValidFrom, c.ValidTo,
			c.Fingerprint, c.KeySize, c.SignatureAlgorithm); err != nil {
			return fmt.Errorf("saving ssl certificate: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM whois_info WHERE domain_id = $1`, d.ID); err != nil {
		return err
	}
	if w := d.Whois; w != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO whois_info (domain_id, name, organization, country, street, city, state, postal_code)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			d.ID, w.Name, w.Organization, w.Country, w.Street, w.City, w.State, w.PostalCode); err != nil {
			return fmt.Errorf("saving whois info: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_costings WHERE domain_id = $1`, d.ID); err != nil {
		return err
	}
	if c := d.Costing; c != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO domain_costings (domain_id, purchase_price, current_value, renewal_cost, auto_renew)
			VALUES ($1, $2, $3, $4, $5)`,
			d.ID, c.PurchasePrice, c.CurrentValue, c.RenewalCost, c.AutoRenew); err != nil {
			return fmt.Errorf("saving costing: %w", err)
		}
	}

	// 5. Tags are created on first use
	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_tags WHERE domain_id = $1`, d.ID); err != nil {
		return err
	}
	for _, name := range d.Tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tagID uuid.UUID
		err := tx.GetContext(ctx, &tagID, `
			INSERT INTO tags (id, user_id, name, color) VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, uuid.New(), d.UserID, name, domain.DefaultTagColor)
		if err != nil {
			return fmt.Errorf("saving tag %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO domain_tags (domain_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, d.ID, tagID); err != nil {
			return err
		}
	}

	// 6. Per-domain notification switches
	if _, err := tx.ExecContext(ctx, `DELETE FROM notification_preferences WHERE domain_id = $1`, d.ID); err != nil {
		return err
	}
	for t, enabled := range d.Notifications {
		if !t.Valid() {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notification_preferences (domain_id, notification_type, is_enabled)
			VALUES ($1, $2, $3)`, d.ID, string(t), enabled); err != nil {
			return fmt.Errorf("saving notification preference: %w", err)
		}
	}

	return nil
}

// ==========================================
// Reads
// ==========================================

func (r *pgDomainRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Domain, error) {
	return r.getOne(ctx, selectDomains+` WHERE d.user_id = $1 AND d.id = $2`, userID, id)
}

func (r *pgDomainRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Domain, error) {
	return r.getOne(ctx, selectDomains+` WHERE d.user_id = $1 AND d.domain_name = $2`, userID, name)
}

func (r *pgDomainRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Domain, error) {
	var row domainRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, mapError(err)
	}
	list := []domain.Domain{row.toDomain()}
	if err := loadChildren(ctx, r.db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List supports paging, search, tag/registrar filters and sorting.
func (r *pgDomainRepo) List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Domain, int64, error) {
	filter.Normalize()
	where, args := buildListWhere(userID, filter)

	// 1. Total for the paginator
	var total int64
	countQuery := `SELECT COUNT(*) FROM domains d LEFT JOIN registrars r ON r.id = d.registrar_id ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	// 2. Page
	offset := (filter.Page - 1) * filter.PageSize
	query := fmt.Sprintf("%s %s ORDER BY %s LIMIT %d OFFSET %d",
		selectDomains, where, orderClause(filter.SortBy), filter.PageSize, offset)

	var rows []domainRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	// 3. Children in batch
	results := make([]domain.Domain, len(rows))
	for i, row := range rows {
		results[i] = row.toDomain()
	}
	if err := loadChildren(ctx, r.db, results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *pgDomainRepo) ListAll(ctx context.Context) ([]domain.Domain, error) {
	var rows []domainRow
	if err := r.db.SelectContext(ctx, &rows, selectDomains+` ORDER BY d.user_id, d.domain_name`); err != nil {
		return nil, err
	}
	results := make([]domain.Domain, len(rows))
	for i, row := range rows {
		results[i] = row.toDomain()
	}
	if err := loadChildren(ctx, r.db, results); err != nil {
		return nil, err
	}
	return results, nil
}

func buildListWhere(userID uuid.UUID, f domain.ListFilter) (string, []any) {
	clauses := []string{"d.user_id = $1"}
	args := []any{userID}

	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		clauses = append(clauses, fmt.Sprintf("d.domain_name LIKE $%d", len(args)))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM domain_tags dt JOIN tags t ON t.id = dt.tag_id
			WHERE dt.domain_id = d.id AND t.name = $%d)`, len(args)))
	}
	if f.Registrar != "" {
		args = append(args, f.Registrar)
		clauses = append(clauses, fmt.Sprintf("r.name = $%d", len(args)))
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func orderClause(sortBy string) string {
	switch sortBy {
	case domain.SortExpiryAsc:
		return "d.expiry_date ASC NULLS LAST, d.domain_name"
	case domain.SortExpiryDesc:
		return "d.expiry_date DESC NULLS LAST, d.domain_name"
	case domain.SortNameAsc:
		return "d.domain_name ASC"
	case domain.SortNameDesc:
		return "d.domain_name DESC"
	default:
		return "d.created_at DESC, d.domain_name"
	}
}

// loadChildren fills the child collections of every domain in list using one query per table.
func loadChildren(ctx context.Context, q sqlx.QueryerContext, list []domain.Domain) error {
	if len(list) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]*domain.Domain, len(list))
	ids := make([]uuid.UUID, len(list))
	for i := range list {
		d := &list[i]
		d.IPAddresses = []domain.IPAddress{}
		d.DNSRecords = []domain.DNSRecord{}
		d.Statuses = []string{}
		d.Tags = []string{}
		d.Notifications = map[domain.NotificationType]bool{}
		index[d.ID] = d
		ids[i] = d.ID
	}
	idArray := uuidStrings(ids)

	var ips []struct {
		DomainID uuid.UUID `db:"domain_id"`
		domain.IPAddress
	}
	if err := sqlx.SelectContext(ctx, q, &ips, `
		SELECT domain_id, ip_address, is_ipv6 FROM ip_addresses
		WHERE domain_id = ANY($1::uuid[]) ORDER BY ip_address`, idArray); err != nil {
		return fmt.Errorf("loading ip addresses: %w", err)
	}
	for _, row := range ips {
		index[row.DomainID].IPAddresses = append(index[row.DomainID].IPAddresses, row.IPAddress)
	}

	var records []struct {
		DomainID uuid.UUID `db:"domain_id"`
		domain.DNSRecord
	}
	if err := sqlx.SelectContext(ctx, q, &records, `
		SELECT domain_id, record_type, record_value FROM dns_records
		WHERE domain_id = ANY($1::uuid[]) ORDER BY record_type, record_value`, idArray); err != nil {
		return fmt.Errorf("loading dns records: %w", err)
	}
	for _, row := range records {
		index[row.DomainID].DNSRecords = append(index[row.DomainID].DNSRecords, row.DNSRecord)
	}

	var statuses []struct {
		DomainID uuid.UUID `db:"domain_id"`
		Status   string    `db:"status_code"`
	}
	if err := sqlx.SelectContext(ctx, q, &statuses, `
		SELECT domain_id, status_code FROM domain_statuses
		WHERE domain_id = ANY($1::uuid[]) ORDER BY status_code`, idArray); err != nil {
		return fmt.Errorf("loading statuses: %w", err)
	}
	for _, row := range statuses {
		index[row.DomainID].Statuses = append(index[row.DomainID].Statuses, row.Status)
	}

	var certs []struct {
		DomainID uuid.UUID `db:"domain_id"`
		domain.SSLCertificate
	}
	if err := sqlx.SelectContext(ctx, q, &certs, `
		SELECT domain_id, issuer, issuer_country, subject, valid_from, valid_to,
		       fingerprint, key_size, signature_algorithm
		FROM ssl_certificates WHERE domain_id = ANY($1::uuid[])`, idArray); err != nil {
		return fmt.Errorf("loading ssl certificates: %w", err)
	}
	for _, row := range certs {
		c := row.SSLCertificate
		index[row.DomainID].SSL = &c
	}

	var whois []struct {
		DomainID uuid.UUID `db:"domain_id"`
		domain.WhoisInfo
	}
	if err := sqlx.SelectContext(ctx, q, &whois, `
		SELECT domain_id, name, organization, country, street, city, state, postal_code
		FROM whois_info WHERE domain_id = ANY($1::uuid[])`, idArray); err != nil {
		return fmt.Errorf("loading whois info: %w", err)
	}
	for _, row := range whois {
		w := row.WhoisInfo
		index[row.DomainID].Whois = &w
	}

	var costings []struct {
		DomainID uuid.UUID `db:"domain_id"`
		domain.Costing
	}
	if err := sqlx.SelectContext(ctx, q, &costings, `
		SELECT domain_id, purchase_price, current_value, renewal_cost, auto_renew
		FROM domain_costings WHERE domain_id = ANY($1::uuid[])`, idArray); err != nil {
		return fmt.Errorf("loading costings: %w", err)
	}
	for _, row := range costings {
		c := row.Costing
		index[row.DomainID].Costing = &c
	}

	var tags []struct {
		DomainID uuid.UUID `db:"domain_id"`
		Name     string    `db:"name"`
	}
	if err := sqlx.SelectContext(ctx, q, &tags, `
		SELECT dt.domain_id, t.name FROM domain_tags dt JOIN tags t ON t.id = dt.tag_id
		WHERE dt.domain_id = ANY($1::uuid[]) ORDER BY t.name`, idArray); err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}
	for _, row := range tags {
		index[row.DomainID].Tags = append(index[row.DomainID].Tags, row.Name)
	}

	var prefs []struct {
		DomainID uuid.UUID `db:"domain_id"`
		Type     string    `db:"notification_type"`
		Enabled  bool      `db:"is_enabled"`
	}
	if err := sqlx.SelectContext(ctx, q, &prefs, `
		SELECT domain_id, notification_type, is_enabled FROM notification_preferences
		WHERE domain_id = ANY($1::uuid[])`, idArray); err != nil {
		return fmt.Errorf("loading notification preferences: %w", err)
	}
	for _, row := range prefs {
		index[row.DomainID].Notifications[domain.NotificationType(row.Type)] = row.Enabled
	}

	return nil
}

// ==========================================
// Registrars, statistics, history
// ==========================================

func (r *pgDomainRepo) ListRegistrars(ctx context.Context, userID uuid.UUID) ([]domain.Registrar, error) {
	registrars := []domain.Registrar{}
	err := r.db.SelectContext(ctx, &registrars, `
		SELECT r.id, r.user_id, r.name, r.url, COUNT(d.id) AS domain_count
		FROM registrars r
		LEFT JOIN domains d ON d.registrar_id = r.id
		WHERE r.user_id = $1
		GROUP BY r.id
		ORDER BY r.name`, userID)
	return registrars, err
}

// GetStatistics aggregates the dashboard counters; expiry buckets are computed in Go from the raw dates.
func (r *pgDomainRepo) GetStatistics(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	stats := domain.NewDashboardStats()

	if err := r.db.GetContext(ctx, &stats.TotalDomains,
		`SELECT COUNT(*) FROM domains WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.TotalTags,
		`SELECT COUNT(*) FROM tags WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.UnreadAlerts,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID); err != nil {
		return nil, err
	}

	var expiries []time.Time
	if err := r.db.SelectContext(ctx, &expiries,
		`SELECT expiry_date FROM domains WHERE user_id = $1 AND expiry_date IS NOT NULL`, userID); err != nil {
		return nil, err
	}
	now := time.Now()
	for _, e := range expiries {
		if bucket := domain.ExpiryBucket(domain.DaysBetween(now, e)); bucket != "" {
			stats.ExpiryCounts[bucket]++
		}
	}

	type countRow struct {
		Name  string `db:"name"`
		Count int    `db:"count"`
	}
	groups := []struct {
		target map[string]int
		query  string
	}{
		{stats.RegistrarCount, `
			SELECT r.name, COUNT(*) AS count FROM domains d JOIN registrars r ON r.id = d.registrar_id
			WHERE d.user_id = $1 GROUP BY r.name`},
		{stats.TagCounts, `
			SELECT t.name, COUNT(dt.domain_id) AS count FROM tags t JOIN domain_tags dt ON dt.tag_id = t.id
			WHERE t.user_id = $1 GROUP BY t.name`},
		{stats.IssuerCounts, `
			SELECT s.issuer AS name, COUNT(*) AS count FROM ssl_certificates s JOIN domains d ON d.id = s.domain_id
			WHERE d.user_id = $1 AND s.issuer <> '' GROUP BY s.issuer`},
	}
	for _, g := range groups {
		var rows []countRow
		if err := r.db.SelectContext(ctx, &rows, g.query, userID); err != nil {
			return nil, err
		}
		for _, row := range rows {
			g.target[row.Name] = row.Count
		}
	}

	return stats, nil
}

func (r *pgDomainRepo) AddUpdates(ctx context.Context, updates []domain.DomainUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range updates {
			u := &updates[i]
			if u.ID == uuid.Nil {
				u.ID = uuid.New()
			}
			if u.Date.IsZero() {
				u.Date = time.Now().UTC()
			}
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO domain_updates (id, domain_id, user_id, change, change_type, old_value, new_value, date)
				VALUES (:id, :domain_id, :user_id, :change, :change_type, :old_value, :new_value, :date)`, u)
			if err != nil {
				return fmt.Errorf("saving domain update: %w", err)
			}
		}
		return nil
	})
}

func (r *pgDomainRepo) ListUpdates(ctx context.Context, userID, domainID uuid.UUID, limit int) ([]domain.DomainUpdate, error) {
	if limit <= 0 {
		limit = 100
	}
	updates := []domain.DomainUpdate{}
	err := r.db.SelectContext(ctx, &updates, `
		SELECT id, domain_id, user_id, change, change_type, old_value, new_value, date
		FROM domain_updates
		WHERE user_id = $1 AND domain_id = $2
		ORDER BY date DESC
		LIMIT $3`, userID, domainID, limit)
	return updates, err
}
