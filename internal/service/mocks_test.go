package service

import (
	"context"
	"sync"
	"time"

	"domain-locker/internal/domain"

	"github.com/google/uuid"
)

// MockDomainRepo mocks repository.DomainRepository.
type MockDomainRepo struct {
	createFunc         func(d *domain.Domain) error
	getByIDFunc        func(userID, id uuid.UUID) (*domain.Domain, error)
	getByNameFunc      func(userID uuid.UUID, name string) (*domain.Domain, error)
	listFunc           func(userID uuid.UUID, filter domain.ListFilter) ([]domain.Domain, int64, error)
	listAllFunc        func() ([]domain.Domain, error)
	updateFunc         func(d *domain.Domain) error
	deleteFunc         func(userID, id uuid.UUID) error
	listRegistrarsFunc func(userID uuid.UUID) ([]domain.Registrar, error)
	getStatisticsFunc  func(userID uuid.UUID) (*domain.DashboardStats, error)
	addUpdatesFunc     func(updates []domain.DomainUpdate) error
	listUpdatesFunc    func(userID, domainID uuid.UUID, limit int) ([]domain.DomainUpdate, error)
}

func (m *MockDomainRepo) Create(ctx context.Context, d *domain.Domain) error {
	if m.createFunc != nil {
		return m.createFunc(d)
	}
	return nil
}

func (m *MockDomainRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Domain, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockDomainRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Domain, error) {
	if m.getByNameFunc != nil {
		return m.getByNameFunc(userID, name)
	}
	return nil, domain.ErrNotFound
}

func (m *MockDomainRepo) List(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Domain, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(userID, filter)
	}
	return nil, 0, nil
}

func (m *MockDomainRepo) ListAll(ctx context.Context) ([]domain.Domain, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc()
	}
	return nil, nil
}

func (m *MockDomainRepo) Update(ctx context.Context, d *domain.Domain) error {
	if m.updateFunc != nil {
		return m.updateFunc(d)
	}
	return nil
}

func (m *MockDomainRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(userID, id)
	}
	return nil
}

func (m *MockDomainRepo) ListRegistrars(ctx context.Context, userID uuid.UUID) ([]domain.Registrar, error) {
	if m.listRegistrarsFunc != nil {
		return m.listRegistrarsFunc(userID)
	}
	return nil, nil
}

func (m *MockDomainRepo) GetStatistics(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	if m.getStatisticsFunc != nil {
		return m.getStatisticsFunc(userID)
	}
	return domain.NewDashboardStats(), nil
}

func (m *MockDomainRepo) AddUpdates(ctx context.Context, updates []domain.DomainUpdate) error {
	if m.addUpdatesFunc != nil {
		return m.addUpdatesFunc(updates)
	}
	return nil
}

func (m *MockDomainRepo) ListUpdates(ctx context.Context, userID, domainID uuid.UUID, limit int) ([]domain.DomainUpdate, error) {
	if m.listUpdatesFunc != nil {
		return m.listUpdatesFunc(userID, domainID, limit)
	}
	return nil, nil
}

// MockTagRepo mocks repository.TagRepository.
type MockTagRepo struct {
	listFunc       func(userID uuid.UUID) ([]domain.Tag, error)
	getByNameFunc  func(userID uuid.UUID, name string) (*domain.Tag, error)
	saveFunc       func(tag *domain.Tag) error
	deleteFunc     func(userID, id uuid.UUID) error
	setDomainsFunc func(userID, tagID uuid.UUID, domainIDs []uuid.UUID) error
	saveCalls      int
}

func (m *MockTagRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	if m.listFunc != nil {
		return m.listFunc(userID)
	}
	return nil, nil
}

func (m *MockTagRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	if m.getByNameFunc != nil {
		return m.getByNameFunc(userID, name)
	}
	return nil, domain.ErrNotFound
}

func (m *MockTagRepo) Save(ctx context.Context, tag *domain.Tag) error {
	m.saveCalls++
	if m.saveFunc != nil {
		return m.saveFunc(tag)
	}
	return nil
}

func (m *MockTagRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(userID, id)
	}
	return nil
}

func (m *MockTagRepo) SetDomains(ctx context.Context, userID, tagID uuid.UUID, domainIDs []uuid.UUID) error {
	if m.setDomainsFunc != nil {
		return m.setDomainsFunc(userID, tagID, domainIDs)
	}
	return nil
}

// MockNotificationRepo keeps created notifications in memory.
type MockNotificationRepo struct {
	mu          sync.Mutex
	created     []domain.Notification
	sent        []uuid.UUID
	existsFunc  func(domainID uuid.UUID, t domain.NotificationType, since time.Time) (bool, error)
	createError error
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if m.createError != nil {
		return m.createError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	m.created = append(m.created, *n)
	return nil
}

func (m *MockNotificationRepo) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification{}, m.created...), nil
}

func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.created)), nil
}

func (m *MockNotificationRepo) SetRead(ctx context.Context, userID, id uuid.UUID, read bool) error {
	return nil
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (m *MockNotificationRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}

func (m *MockNotificationRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, id)
	return nil
}

func (m *MockNotificationRepo) ExistsSince(ctx context.Context, domainID uuid.UUID, t domain.NotificationType, since time.Time) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(domainID, t, since)
	}
	return false, nil
}

func (m *MockNotificationRepo) Created() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification{}, m.created...)
}

// MockPreferenceRepo stores one preferences document per user.
type MockPreferenceRepo struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]domain.UserPreferences
}

func (m *MockPreferenceRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		return &p, nil
	}
	p := domain.DefaultPreferences()
	return &p, nil
}

func (m *MockPreferenceRepo) Save(ctx context.Context, userID uuid.UUID, prefs domain.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		m.prefs = map[uuid.UUID]domain.UserPreferences{}
	}
	m.prefs[userID] = prefs
	return nil
}

// MockLookup returns canned lookup results.
type MockLookup struct {
	lookupFunc func(name string) (*domain.DomainInfo, error)
	calls      int
	mu         sync.Mutex
}

func (m *MockLookup) Lookup(ctx context.Context, name string) (*domain.DomainInfo, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.lookupFunc != nil {
		return m.lookupFunc(name)
	}
	return &domain.DomainInfo{DomainName: name}, nil
}

// MockDispatcher records every message handed to it.
type MockDispatcher struct {
	mu       sync.Mutex
	messages []MessageData
}

func (m *MockDispatcher) Notify(prefs domain.UserPreferences, data MessageData) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, data)
	return prefs.HasChannel()
}

// MockTestSender records the preferences a test message was sent with.
type MockTestSender struct {
	sendFunc func(prefs domain.UserPreferences) error
	last     *domain.UserPreferences
}

func (m *MockTestSender) SendTest(ctx context.Context, prefs domain.UserPreferences) error {
	m.last = &prefs
	if m.sendFunc != nil {
		return m.sendFunc(prefs)
	}
	return nil
}

func ptrTime(t time.Time) *time.Time { return &t }
