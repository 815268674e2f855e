package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexandevs2309/api-peluqueria-sub001/internal/authz"
	"github.com/alexandevs2309/api-peluqueria-sub001/internal/models"
)

// MemoryStore is an in-memory implementation of every store interface,
// used in development mode and tests. A single mutex guards all maps so
// cross-aggregate operations (seat counts, onboarding) stay consistent.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*models.User
	usersByEmail  map[string]uuid.UUID
	tenants       map[uuid.UUID]*models.Tenant
	tenantsBySub  map[string]uuid.UUID
	plans         map[uuid.UUID]*models.SubscriptionPlan
	assignments   map[uuid.UUID]*models.RoleAssignment
	subscriptions map[uuid.UUID]*models.UserSubscription
	payments      map[uuid.UUID]*models.Payment
	events        map[string]*models.WebhookEvent // keyed by provider + ":" + event_id
	eventsByID    map[uuid.UUID]*models.WebhookEvent
	appointments  map[uuid.UUID]*models.Appointment
	sales         map[uuid.UUID]*models.Sale
	employees     map[uuid.UUID]*models.Employee
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uuid.UUID]*models.User),
		usersByEmail:  make(map[string]uuid.UUID),
		tenants:       make(map[uuid.UUID]*models.Tenant),
		tenantsBySub:  make(map[string]uuid.UUID),
		plans:         make(map[uuid.UUID]*models.SubscriptionPlan),
		assignments:   make(map[uuid.UUID]*models.RoleAssignment),
		subscriptions: make(map[uuid.UUID]*models.UserSubscription),
		payments:      make(map[uuid.UUID]*models.Payment),
		events:        make(map[string]*models.WebhookEvent),
		eventsByID:    make(map[uuid.UUID]*models.WebhookEvent),
		appointments:  make(map[uuid.UUID]*models.Appointment),
		sales:         make(map[uuid.UUID]*models.Sale),
		employees:     make(map[uuid.UUID]*models.Employee),
	}
}

// --- users ---

// Users returns the store's UserRepository view.
func (m *MemoryStore) Users() UserRepository { return m }

func (m *MemoryStore) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.usersByEmail[u.Email]; exists {
		return ErrEmailTaken
	}
	cp := *u
	m.users[u.ID] = &cp
	m.usersByEmail[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateUserLocked(u)
}

func (m *MemoryStore) updateUserLocked(u *models.User) error {
	old, ok := m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if old.Email != u.Email {
		delete(m.usersByEmail, old.Email)
		m.usersByEmail[u.Email] = u.ID
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryStore) CountActiveUsers(ctx context.Context, tenantID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, u := range m.users {
		if u.IsActive && u.TenantID != nil && *u.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

// --- tenants ---

// Tenants returns a view of the store implementing TenantRepository.
func (m *MemoryStore) Tenants() TenantRepository { return (*memoryTenants)(m) }

type memoryTenants MemoryStore

func (m *memoryTenants) Create(ctx context.Context, t *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*MemoryStore)(m).createTenantLocked(t)
}

func (m *MemoryStore) createTenantLocked(t *models.Tenant) error {
	if _, exists := m.tenantsBySub[t.Subdomain]; exists {
		return ErrSubdomainTaken
	}
	cp := *t
	m.tenants[t.ID] = &cp
	m.tenantsBySub[t.Subdomain] = t.ID
	return nil
}

func (m *memoryTenants) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryTenants) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.tenantsBySub[subdomain]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.tenants[id]
	return &cp, nil
}

func (m *memoryTenants) Update(ctx context.Context, t *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.tenants[t.ID]
	if !ok {
		return ErrNotFound
	}
	if old.Subdomain != t.Subdomain {
		delete(m.tenantsBySub, old.Subdomain)
		m.tenantsBySub[t.Subdomain] = t.ID
	}
	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

func (m *memoryTenants) List(ctx context.Context) ([]models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- plans ---

func (m *MemoryStore) Plans() PlanRepository { return (*memoryPlans)(m) }

type memoryPlans MemoryStore

func (m *memoryPlans) Create(ctx context.Context, p *models.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *memoryPlans) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPlans) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.SubscriptionPlan, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryPlans) Update(ctx context.Context, p *models.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

// --- role assignments ---

func (m *MemoryStore) RoleAssignments() RoleRepository { return (*memoryRoles)(m) }

type memoryRoles MemoryStore

func (m *memoryRoles) GetOrCreateAssignment(ctx context.Context, ra *models.RoleAssignment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*MemoryStore)(m).getOrCreateAssignmentLocked(ra)
}

func (m *MemoryStore) getOrCreateAssignmentLocked(ra *models.RoleAssignment) (bool, error) {
	for _, existing := range m.assignments {
		if existing.UserID != ra.UserID || existing.RoleCode != ra.RoleCode {
			continue
		}
		if (existing.TenantID == nil) != (ra.TenantID == nil) {
			continue
		}
		if existing.TenantID != nil && *existing.TenantID != *ra.TenantID {
			continue
		}
		*ra = *existing
		return false, nil
	}
	cp := *ra
	m.assignments[ra.ID] = &cp
	return true, nil
}

func (m *memoryRoles) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RoleAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.RoleAssignment
	for _, ra := range m.assignments {
		if ra.UserID == userID {
			out = append(out, *ra)
		}
	}
	return out, nil
}

func (m *memoryRoles) CountActiveEmployees(ctx context.Context, tenantID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, ra := range m.assignments {
		if ra.TenantID == nil || *ra.TenantID != tenantID {
			continue
		}
		if !authz.IsEmployeeRole(ra.RoleCode) {
			continue
		}
		if u, ok := m.users[ra.UserID]; ok && u.IsActive {
			count++
		}
	}
	return count, nil
}

// --- subscriptions ---

func (m *MemoryStore) Subscriptions() SubscriptionRepository { return (*memorySubs)(m) }

type memorySubs MemoryStore

func (m *memorySubs) Create(ctx context.Context, s *models.UserSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.subscriptions[s.ID] = &cp
	return nil
}

func (m *memorySubs) GetByID(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subscriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memorySubs) GetByUser(ctx context.Context, userID uuid.UUID) (*models.UserSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.subscriptions {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memorySubs) Update(ctx context.Context, s *models.UserSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subscriptions[s.ID]; !ok {
		return ErrNotFound
	}
	cp := *s
	m.subscriptions[s.ID] = &cp
	return nil
}

func (m *memorySubs) ListExpired(ctx context.Context, before time.Time) ([]models.UserSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.UserSubscription
	for _, s := range m.subscriptions {
		if s.Status == models.SubscriptionStatusActive && s.CurrentPeriodEnd.Before(before) {
			out = append(out, *s)
		}
	}
	return out, nil
}

// --- payments ---

func (m *MemoryStore) Payments() PaymentRepository { return (*memoryPayments)(m) }

type memoryPayments MemoryStore

func (m *memoryPayments) Create(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *memoryPayments) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPayments) GetByProviderPaymentID(ctx context.Context, provider, providerPaymentID string) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.payments {
		if p.Provider == provider && p.ProviderPaymentID == providerPaymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryPayments) Update(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.payments[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *memoryPayments) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ApplyOnboarding applies every onboarding write under the single store
// lock, mirroring the transactional Postgres implementation.
func (m *memoryPayments) ApplyOnboarding(ctx context.Context, ob *Onboarding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	store := (*MemoryStore)(m)

	p, ok := m.payments[ob.PaymentID]
	if !ok {
		return ErrNotFound
	}
	if p.Status != models.PaymentStatusCompleted || p.SubscriptionID != nil {
		return ErrAlreadyOnboarded
	}

	if err := store.createTenantLocked(ob.Tenant); err != nil {
		return err
	}

	owner, ok := m.users[ob.Tenant.OwnerID]
	if !ok {
		delete(m.tenants, ob.Tenant.ID)
		delete(m.tenantsBySub, ob.Tenant.Subdomain)
		return ErrNotFound
	}
	tenantID := ob.Tenant.ID
	owner.TenantID = &tenantID

	sub := *ob.Subscription
	m.subscriptions[sub.ID] = &sub

	subID := sub.ID
	p.SubscriptionID = &subID
	p.UpdatedAt = time.Now()

	if _, err := store.getOrCreateAssignmentLocked(ob.Role); err != nil {
		return err
	}
	return nil
}

// --- webhook events ---

func (m *MemoryStore) WebhookEvents() WebhookEventRepository { return (*memoryEvents)(m) }

type memoryEvents MemoryStore

func (m *memoryEvents) Record(ctx context.Context, e *models.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := e.Provider + ":" + e.EventID
	if _, exists := m.events[key]; exists {
		return ErrDuplicateEvent
	}
	cp := *e
	m.events[key] = &cp
	m.eventsByID[e.ID] = &cp
	return nil
}

func (m *memoryEvents) MarkProcessed(ctx context.Context, id uuid.UUID, processingError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.eventsByID[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	e.Processed = processingError == ""
	e.Error = processingError
	e.ProcessedAt = &now
	return nil
}

// --- appointments ---

func (m *MemoryStore) Appointments() AppointmentRepository { return (*memoryAppointments)(m) }

type memoryAppointments MemoryStore

func (m *memoryAppointments) Create(ctx context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *memoryAppointments) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryAppointments) List(ctx context.Context, scope authz.TenantScope) ([]models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Appointment{}
	if scope.Empty() {
		return out, nil
	}
	for _, a := range m.appointments {
		if scope.Allows(a.TenantID) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (m *memoryAppointments) Update(ctx context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *memoryAppointments) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(m.appointments, id)
	return nil
}

// --- sales ---

func (m *MemoryStore) Sales() SaleRepository { return (*memorySales)(m) }

type memorySales MemoryStore

func (m *memorySales) Create(ctx context.Context, s *models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	cp.Items = append([]models.SaleItem(nil), s.Items...)
	m.sales[s.ID] = &cp
	return nil
}

func (m *memorySales) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	cp.Items = append([]models.SaleItem(nil), s.Items...)
	return &cp, nil
}

func (m *memorySales) List(ctx context.Context, scope authz.TenantScope) ([]models.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Sale{}
	if scope.Empty() {
		return out, nil
	}
	for _, s := range m.sales {
		if scope.Allows(s.TenantID) {
			cp := *s
			cp.Items = append([]models.SaleItem(nil), s.Items...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- employees ---

func (m *MemoryStore) Employees() EmployeeRepository { return (*memoryEmployees)(m) }

type memoryEmployees MemoryStore

func (m *memoryEmployees) Create(ctx context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *e
	m.employees[e.ID] = &cp
	return nil
}

func (m *memoryEmployees) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memoryEmployees) List(ctx context.Context, scope authz.TenantScope) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Employee{}
	if scope.Empty() {
		return out, nil
	}
	for _, e := range m.employees {
		if scope.Allows(e.TenantID) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryEmployees) Update(ctx context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[e.ID]; !ok {
		return ErrNotFound
	}
	cp := *e
	m.employees[e.ID] = &cp
	return nil
}

var (
	_ UserRepository         = (*MemoryStore)(nil)
	_ TenantRepository       = (*memoryTenants)(nil)
	_ PlanRepository         = (*memoryPlans)(nil)
	_ RoleRepository         = (*memoryRoles)(nil)
	_ SubscriptionRepository = (*memorySubs)(nil)
	_ PaymentRepository      = (*memoryPayments)(nil)
	_ WebhookEventRepository = (*memoryEvents)(nil)
	_ AppointmentRepository  = (*memoryAppointments)(nil)
	_ SaleRepository         = (*memorySales)(nil)
	_ EmployeeRepository     = (*memoryEmployees)(nil)
)
