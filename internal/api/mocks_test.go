package api

import (
	"context"
	"time"

	"domain-locker/internal/domain"

	"github.com/google/uuid"
)

type mockDomainRepo struct {
	createFunc    func(d *domain.Domain) error
	getByIDFunc   func(userID, id uuid.UUID) (*domain.Domain, error)
	getByNameFunc func(userID uuid.UUID, name string) (*domain.Domain, error)
	listFunc      func(userID uuid.UUID, f domain.ListFilter) ([]domain.Domain, int64, error)
	statsFunc     func(userID uuid.UUID) (*domain.DashboardStats, error)
}

func (m *mockDomainRepo) Create(ctx context.Context, d *domain.Domain) error {
	if m.createFunc != nil {
		return m.createFunc(d)
	}
	d.ID = uuid.New()
	return nil
}

func (m *mockDomainRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Domain, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDomainRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Domain, error) {
	if m.getByNameFunc != nil {
		return m.getByNameFunc(userID, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDomainRepo) List(ctx context.Context, userID uuid.UUID, f domain.ListFilter) ([]domain.Domain, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(userID, f)
	}
	return nil, 0, nil
}

func (m *mockDomainRepo) ListAll(ctx context.Context) ([]domain.Domain, error) { return nil, nil }

func (m *mockDomainRepo) Update(ctx context.Context, d *domain.Domain) error { return nil }

func (m *mockDomainRepo) Delete(ctx context.Context, userID, id uuid.UUID) error { return nil }

func (m *mockDomainRepo) ListRegistrars(ctx context.Context, userID uuid.UUID) ([]domain.Registrar, error) {
	return nil, nil
}

func (m *mockDomainRepo) GetStatistics(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(userID)
	}
	return domain.NewDashboardStats(), nil
}

func (m *mockDomainRepo) AddUpdates(ctx context.Context, updates []domain.DomainUpdate) error {
	return nil
}

func (m *mockDomainRepo) ListUpdates(ctx context.Context, userID, domainID uuid.UUID, limit int) ([]domain.DomainUpdate, error) {
	return nil, nil
}

type mockTagRepo struct {
	saveCalls int
}

func (m *mockTagRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	return nil, nil
}

func (m *mockTagRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	return nil, domain.ErrNotFound
}

func (m *mockTagRepo) Save(ctx context.Context, tag *domain.Tag) error {
	m.saveCalls++
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	return nil
}

func (m *mockTagRepo) Delete(ctx context.Context, userID, id uuid.UUID) error { return nil }

func (m *mockTagRepo) SetDomains(ctx context.Context, userID, tagID uuid.UUID, domainIDs []uuid.UUID) error {
	return nil
}

type mockNotificationRepo struct {
	setReadFunc func(id uuid.UUID, read bool) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error { return nil }

func (m *mockNotificationRepo) List(ctx context.Context, userID uuid.UUID, f domain.NotificationFilter) ([]domain.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 3, nil
}

func (m *mockNotificationRepo) SetRead(ctx context.Context, userID, id uuid.UUID, read bool) error {
	if m.setReadFunc != nil {
		return m.setReadFunc(id, read)
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, userID, id uuid.UUID) error { return nil }

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockNotificationRepo) ExistsSince(ctx context.Context, domainID uuid.UUID, t domain.NotificationType, since time.Time) (bool, error) {
	return false, nil
}

type mockPreferenceRepo struct {
	saved map[uuid.UUID]domain.UserPreferences
}

func (m *mockPreferenceRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	if p, ok := m.saved[userID]; ok {
		return &p, nil
	}
	p := domain.DefaultPreferences()
	return &p, nil
}

func (m *mockPreferenceRepo) Save(ctx context.Context, userID uuid.UUID, prefs domain.UserPreferences) error {
	if m.saved == nil {
		m.saved = map[uuid.UUID]domain.UserPreferences{}
	}
	m.saved[userID] = prefs
	return nil
}

type mockExecutor struct {
	executeFunc func(query string, params []any) ([]map[string]any, error)
	calls       int
}

func (m *mockExecutor) Execute(ctx context.Context, query string, params []any) ([]map[string]any, error) {
	m.calls++
	if m.executeFunc != nil {
		return m.executeFunc(query, params)
	}
	return []map[string]any{}, nil
}

type mockLookup struct{}

func (m *mockLookup) Lookup(ctx context.Context, name string) (*domain.DomainInfo, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return &domain.DomainInfo{DomainName: name, IPAddresses: []domain.IPAddress{{IPAddress: "1.2.3.4"}}}, nil
}

type mockJobs struct {
	running map[string]bool
}

func (m *mockJobs) Trigger(name string) (bool, error) {
	switch name {
	case "refresh", "reminders":
	default:
		return false, domain.NewValidationError("unknown job %q", name)
	}
	if m.running[name] {
		return false, nil
	}
	return true, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error { return m.err }

type mockTestSender struct {
	err error
}

func (m *mockTestSender) SendTest(ctx context.Context, prefs domain.UserPreferences) error {
	return m.err
}
