package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"pos-storefront-backend/internal/cart"
	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type publishedEvent struct {
	Topic string
	Key   string
	Value []byte
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, value interface{}) error {
	data, _ := json.Marshal(value)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Value: data})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		var body struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(e.Value, &body)
		out = append(out, body.Type)
	}
	return out
}

type memProductRepo struct {
	products map[primitive.ObjectID]*models.Product
}

func newMemProductRepo(products ...*models.Product) *memProductRepo {
	r := &memProductRepo{products: map[primitive.ObjectID]*models.Product{}}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepo) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) Update(_ context.Context, p *models.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) List(_ context.Context, filter repositories.ProductFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range r.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *memProductRepo) CountByCategory(_ context.Context, id primitive.ObjectID) (int64, error) {
	var n int64
	for _, p := range r.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

type memCategoryRepo struct {
	categories map[primitive.ObjectID]*models.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: map[primitive.ObjectID]*models.Category{}}
}

func (r *memCategoryRepo) Create(_ context.Context, c *models.Category) error {
	c.ID = primitive.NewObjectID()
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *models.Category) error {
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.categories[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *memCategoryRepo) List(_ context.Context, activeOnly bool) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range r.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// stubOrderRepo records orders in memory; createErr makes Create fail.
type stubOrderRepo struct {
	orders    map[uuid.UUID]*models.Order
	createErr error
	onCreate  func()
	listFn    func(filter repositories.OrderFilter) ([]models.Order, int64, error)
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (r *stubOrderRepo) Create(_ context.Context, o *models.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.onCreate != nil {
		r.onCreate()
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *stubOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) Update(_ context.Context, o *models.Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *stubOrderRepo) List(_ context.Context, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	if r.listFn != nil {
		return r.listFn(filter)
	}
	var out []models.Order
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) ListCreatedBetween(_ context.Context, from, to time.Time) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type stubSettingsRepo struct {
	settings *models.SiteSettings
	saves    int
}

func (r *stubSettingsRepo) Get(_ context.Context) (*models.SiteSettings, error) {
	if r.settings == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *r.settings
	return &cp, nil
}

func (r *stubSettingsRepo) Save(_ context.Context, s *models.SiteSettings) error {
	cp := *s
	r.settings = &cp
	r.saves++
	return nil
}

type staticSettings struct {
	settings models.SiteSettings
}

func (s staticSettings) Get(context.Context) (*models.SiteSettings, error) {
	cp := s.settings
	return &cp, nil
}

type stubAdminRepo struct {
	users map[uuid.UUID]*models.AdminUser
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{users: map[uuid.UUID]*models.AdminUser{}}
}

func (r *stubAdminRepo) Create(_ context.Context, u *models.AdminUser) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubAdminRepo) GetByID(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubAdminRepo) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *stubAdminRepo) Update(_ context.Context, u *models.AdminUser) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubAdminRepo) Count(context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type fakeSMS struct {
	enabled bool
	sent    []string
	phones  []string
	err     error
}

func (f *fakeSMS) Enabled() bool { return f.enabled }

func (f *fakeSMS) SendMessage(_ context.Context, phone, message string) error {
	f.phones = append(f.phones, phone)
	f.sent = append(f.sent, message)
	return f.err
}

func newTestRegistry() *cart.Registry {
	return cart.NewRegistry(cart.NewPersister(cart.NewMemoryStore(), zap.NewNop()), zap.NewNop())
}

func floatPtr(v float64) *float64 { return &v }
