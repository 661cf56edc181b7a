package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the database. Its transaction
// manager serializes units of work and restores a snapshot on error, which
// is how the real one behaves under row locks and rollback.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users         map[uuid.UUID]model.User
	materials     map[uuid.UUID]model.Material
	toners        map[uuid.UUID]model.Toner
	movements     []model.StockMovement
	internal      map[uuid.UUID]model.InternalRequest
	purchases     map[uuid.UUID]model.PurchaseRequest
	quotations    map[uuid.UUID]model.Quotation
	audits        []model.AuditRecord
	notifications []model.Notification

	failAudit error
	seq       int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]model.User{},
		materials:  map[uuid.UUID]model.Material{},
		toners:     map[uuid.UUID]model.Toner{},
		internal:   map[uuid.UUID]model.InternalRequest{},
		purchases:  map[uuid.UUID]model.PurchaseRequest{},
		quotations: map[uuid.UUID]model.Quotation{},
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (s *memStore) tick() time.Time {
	s.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

type memSnapshot struct {
	users         map[uuid.UUID]model.User
	materials     map[uuid.UUID]model.Material
	toners        map[uuid.UUID]model.Toner
	movements     []model.StockMovement
	internal      map[uuid.UUID]model.InternalRequest
	purchases     map[uuid.UUID]model.PurchaseRequest
	quotations    map[uuid.UUID]model.Quotation
	audits        []model.AuditRecord
	notifications []model.Notification
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		users:         cloneMap(s.users),
		materials:     cloneMap(s.materials),
		toners:        cloneMap(s.toners),
		movements:     append([]model.StockMovement(nil), s.movements...),
		internal:      cloneMap(s.internal),
		purchases:     cloneMap(s.purchases),
		quotations:    cloneMap(s.quotations),
		audits:        append([]model.AuditRecord(nil), s.audits...),
		notifications: append([]model.Notification(nil), s.notifications...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.materials = snap.materials
	s.toners = snap.toners
	s.movements = snap.movements
	s.internal = snap.internal
	s.purchases = snap.purchases
	s.quotations = snap.quotations
	s.audits = snap.audits
	s.notifications = snap.notifications
}

func (s *memStore) auditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audits)
}

func (s *memStore) lastAudit() model.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audits[len(s.audits)-1]
}

func (s *memStore) notificationsFor(id uuid.UUID) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.notifications {
		if n.RecipientID == id {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) addUser(role rbac.Role) model.Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.New(), Username: strings.ToLower(string(role)) + "-" + uuid.NewString()[:8], Role: role}
	u.CreatedAt = s.tick()
	s.users[u.ID] = u
	return u.Actor()
}

func (s *memStore) addMaterial(name, category string, stock *int, minimum int) model.Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := model.Material{ID: uuid.New(), Name: name, Category: category, CurrentStock: stock, MinimumStock: minimum, CreatedAt: s.tick()}
	s.materials[m.ID] = m
	return m
}

func (s *memStore) addToner(modelName, color string) model.Toner {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Toner{ID: uuid.New(), Model: modelName, Color: color, CreatedAt: s.tick()}
	s.toners[t.ID] = t
	return t
}

// --- transaction manager ---

type fakeTxManager struct {
	store *memStore
}

var _ repository.TransactionManager = (*fakeTxManager)(nil)

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	f.store.txMu.Lock()
	defer f.store.txMu.Unlock()

	snap := f.store.snapshot()
	if err := fn(ctx); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// --- audit ---

type fakeAuditRepo struct{ s *memStore }

var _ repository.AuditRepository = (*fakeAuditRepo)(nil)

func (r *fakeAuditRepo) Create(_ context.Context, e *model.AuditRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAudit != nil {
		return r.s.failAudit
	}
	e.ID = uuid.New()
	e.CreatedAt = r.s.tick()
	r.s.audits = append(r.s.audits, *e)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, q repository.AuditQuery) ([]model.AuditRecord, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AuditRecord
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		a := r.s.audits[i]
		if q.EntityType != "" && a.EntityType != q.EntityType {
			continue
		}
		if q.EntityID != "" && a.EntityID != q.EntityID {
			continue
		}
		out = append(out, a)
	}
	return page(out, q.Page, q.Limit), int64(len(out)), nil
}

func page[T any](items []T, p, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (p - 1) * limit
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- notifications ---

type fakeNotificationRepo struct{ s *memStore }

var _ repository.NotificationRepository = (*fakeNotificationRepo)(nil)

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = r.s.tick()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) List(_ context.Context, recipientID uuid.UUID, onlyUnread bool, p, limit int) ([]model.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.RecipientID != recipientID || (onlyUnread && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	return page(out, p, limit), int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.RecipientID == recipientID && !n.IsRead {
			r.s.notifications[i].IsRead = true
			r.s.notifications[i].ReadAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i, item := range r.s.notifications {
		if item.RecipientID == recipientID && !item.IsRead {
			r.s.notifications[i].IsRead = true
			r.s.notifications[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (repository.UnreadCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var c repository.UnreadCounts
	for _, n := range r.s.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		c.Total++
		switch n.Priority {
		case model.PriorityCritical:
			c.Critical++
		case model.PriorityHigh:
			c.High++
		}
	}
	return c, nil
}

// --- users ---

type fakeUserRepo struct{ s *memStore }

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return errs.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, p, limit int) ([]model.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, p, limit), int64(len(out)), nil
}

func (r *fakeUserRepo) ListIDsByRoles(_ context.Context, roles []rbac.Role) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []uuid.UUID
	for _, u := range r.s.users {
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u.ID)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role rbac.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

// --- materials ---

type fakeMaterialRepo struct{ s *memStore }

var _ repository.MaterialRepository = (*fakeMaterialRepo)(nil)

func (r *fakeMaterialRepo) Create(_ context.Context, m *model.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = uuid.New()
	m.CreatedAt = r.s.tick()
	r.s.materials[m.ID] = *m
	return nil
}

func (r *fakeMaterialRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.materials[id]
	if !ok || m.DeletedAt.Valid {
		return errs.ErrNotFound
	}
	m.DeletedAt = gorm.DeletedAt{Time: r.s.tick(), Valid: true}
	r.s.materials[id] = m
	return nil
}

func (r *fakeMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.materials[id]
	if !ok || m.DeletedAt.Valid {
		return nil, errs.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMaterialRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeMaterialRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Material
	for _, id := range ids {
		if m, ok := r.s.materials[id]; ok && !m.DeletedAt.Valid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.materials {
		if !m.DeletedAt.Valid && strings.EqualFold(m.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMaterialRepo) List(_ context.Context, p, limit int, search string) ([]model.Material, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Material
	for _, m := range r.s.materials {
		if m.DeletedAt.Valid {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, p, limit), int64(len(out)), nil
}

func (r *fakeMaterialRepo) UpdateStock(_ context.Context, id uuid.UUID, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.materials[id]
	if !ok {
		return errs.ErrNotFound
	}
	m.CurrentStock = &stock
	r.s.materials[id] = m
	return nil
}

func (r *fakeMaterialRepo) stock(id uuid.UUID) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m := r.s.materials[id]
	return m.Stock()
}

// --- stock movements ---

type fakeMovementRepo struct{ s *memStore }

var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)

func (r *fakeMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = uuid.New()
	m.CreatedAt = r.s.tick()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *fakeMovementRepo) ListByMaterial(_ context.Context, materialID uuid.UUID, p, limit int) ([]model.StockMovement, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].MaterialID == materialID {
			out = append(out, r.s.movements[i])
		}
	}
	return page(out, p, limit), int64(len(out)), nil
}

// --- toners ---

type fakeTonerRepo struct{ s *memStore }

var _ repository.TonerRepository = (*fakeTonerRepo)(nil)

func (r *fakeTonerRepo) Create(_ context.Context, t *model.Toner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = r.s.tick()
	r.s.toners[t.ID] = *t
	return nil
}

func (r *fakeTonerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.toners[id]
	if !ok || t.DeletedAt.Valid {
		return errs.ErrNotFound
	}
	t.DeletedAt = gorm.DeletedAt{Time: r.s.tick(), Valid: true}
	r.s.toners[id] = t
	return nil
}

func (r *fakeTonerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Toner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.toners[id]
	if !ok || t.DeletedAt.Valid {
		return nil, errs.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTonerRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Toner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Toner
	for _, id := range ids {
		if t, ok := r.s.toners[id]; ok && !t.DeletedAt.Valid {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTonerRepo) ExistsByModel(_ context.Context, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.toners {
		if !t.DeletedAt.Valid && strings.EqualFold(t.Model, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTonerRepo) List(_ context.Context, p, limit int) ([]model.Toner, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Toner
	for _, t := range r.s.toners {
		if !t.DeletedAt.Valid {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return page(out, p, limit), int64(len(out)), nil
}

// --- internal requests ---

type fakeInternalRequestRepo struct{ s *memStore }

var _ repository.InternalRequestRepository = (*fakeInternalRequestRepo)(nil)

func (r *fakeInternalRequestRepo) Create(_ context.Context, req *model.InternalRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req.ID = uuid.New()
	req.CreatedAt = r.s.tick()
	req.UpdatedAt = req.CreatedAt
	r.s.internal[req.ID] = *req
	return nil
}

func (r *fakeInternalRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.InternalRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.internal[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &req, nil
}

func (r *fakeInternalRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InternalRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeInternalRequestRepo) List(_ context.Context) ([]model.InternalRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.InternalRequest, 0, len(r.s.internal))
	for _, req := range r.s.internal {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeInternalRequestRepo) Update(_ context.Context, req *model.InternalRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.internal[req.ID]; !ok {
		return errs.ErrNotFound
	}
	req.UpdatedAt = r.s.tick()
	r.s.internal[req.ID] = *req
	return nil
}

// --- purchase requests and quotations ---

type fakePurchaseRequestRepo struct{ s *memStore }

var _ repository.PurchaseRequestRepository = (*fakePurchaseRequestRepo)(nil)

func (r *fakePurchaseRequestRepo) Create(_ context.Context, pr *model.PurchaseRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr.ID = uuid.New()
	pr.CreatedAt = r.s.tick()
	pr.UpdatedAt = pr.CreatedAt
	stored := *pr
	stored.Quotations = nil
	r.s.purchases[pr.ID] = stored
	return nil
}

func (r *fakePurchaseRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr, ok := r.s.purchases[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &pr, nil
}

func (r *fakePurchaseRequestRepo) quotationsOf(id uuid.UUID) []model.Quotation {
	var out []model.Quotation
	for _, q := range r.s.quotations {
		if q.PurchaseRequestID == id {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakePurchaseRequestRepo) FindByIDWithQuotations(_ context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr, ok := r.s.purchases[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	pr.Quotations = r.quotationsOf(id)
	return &pr, nil
}

func (r *fakePurchaseRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakePurchaseRequestRepo) List(_ context.Context, status string, p, limit int) ([]model.PurchaseRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.PurchaseRequest
	for _, pr := range r.s.purchases {
		if status != "" && pr.Status != status {
			continue
		}
		pr.Quotations = r.quotationsOf(pr.ID)
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, p, limit), int64(len(out)), nil
}

func (r *fakePurchaseRequestRepo) Update(_ context.Context, pr *model.PurchaseRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.purchases[pr.ID]; !ok {
		return errs.ErrNotFound
	}
	pr.UpdatedAt = r.s.tick()
	stored := *pr
	stored.Quotations = nil
	r.s.purchases[pr.ID] = stored
	return nil
}

func (r *fakePurchaseRequestRepo) UpdateNotes(_ context.Context, id uuid.UUID, notes string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr, ok := r.s.purchases[id]
	if !ok {
		return errs.ErrNotFound
	}
	pr.QuotationNotes = notes
	r.s.purchases[id] = pr
	return nil
}

type fakeQuotationRepo struct{ s *memStore }

var _ repository.QuotationRepository = (*fakeQuotationRepo)(nil)

func (r *fakeQuotationRepo) Create(_ context.Context, q *model.Quotation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q.ID = uuid.New()
	q.CreatedAt = r.s.tick()
	r.s.quotations[q.ID] = *q
	return nil
}

func (r *fakeQuotationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Quotation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotations[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &q, nil
}

// --- publisher ---

type sentFrame struct {
	userID  uuid.UUID
	payload []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	frames []sentFrame
}

func (p *fakePublisher) SendToUser(userID uuid.UUID, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, sentFrame{userID: userID, payload: payload})
}

func (p *fakePublisher) sentTo(userID uuid.UUID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, f := range p.frames {
		if f.userID == userID {
			n++
		}
	}
	return n
}

func (p *fakePublisher) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// --- wiring ---

type testEnv struct {
	store *memStore
	pub   *fakePublisher

	materials *fakeMaterialRepo

	audit         AuditService
	notifications NotificationService
	internal      InternalRequestService
	purchases     PurchaseRequestService
	stock         StockService
	catalog       CatalogService
	users         UserService
}

func newTestEnv() *testEnv {
	s := newMemStore()
	tx := &fakeTxManager{store: s}
	pub := &fakePublisher{}

	userRepo := &fakeUserRepo{s: s}
	materials := &fakeMaterialRepo{s: s}
	toners := &fakeTonerRepo{s: s}

	audit := NewAuditService(&fakeAuditRepo{s: s})
	notifications := NewNotificationService(&fakeNotificationRepo{s: s}, userRepo, pub, nil)

	return &testEnv{
		store:         s,
		pub:           pub,
		materials:     materials,
		audit:         audit,
		notifications: notifications,
		internal:      NewInternalRequestService(tx, &fakeInternalRequestRepo{s: s}, materials, toners, audit, notifications),
		purchases:     NewPurchaseRequestService(tx, &fakePurchaseRequestRepo{s: s}, &fakeQuotationRepo{s: s}, audit, notifications),
		stock:         NewStockService(tx, materials, &fakeMovementRepo{s: s}, audit),
		catalog:       NewCatalogService(tx, materials, toners, audit, notifications),
		users:         NewUserService(tx, userRepo, audit, "test-secret", time.Hour),
	}
}

var errAuditDown = errors.New("audit store unavailable")

func intPtr(n int) *int { return &n }
