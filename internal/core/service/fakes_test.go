package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
)

// Mock ProductRepository
type mockProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
	err      error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[string]domain.Product)}
}

func (m *mockProductRepo) SaveProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	list := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *mockProductRepo) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// Mock OrderRepository; records every appended event.
type mockOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	events    []domain.OrderEvent
	createErr error
	// failTransitions lists target statuses whose transition returns a store error
	failTransitions map[domain.OrderStatus]bool
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:          make(map[string]domain.Order),
		failTransitions: make(map[domain.OrderStatus]bool),
	}
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[order.ID] = order
	m.events = append(m.events, domain.NewOrderEvent(order, order.CreatedAt))
	return nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *mockOrderRepo) TransitionOrder(ctx context.Context, id string, to domain.OrderStatus) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTransitions[to] {
		return domain.Order{}, domain.ErrStore
	}
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	if !o.Status.CanTransition(to) {
		return domain.Order{}, domain.ErrInvalidTransition
	}
	o.Status = to
	m.orders[id] = o
	m.events = append(m.events, domain.NewOrderEvent(o, o.UpdatedAt))
	return o, nil
}

func (m *mockOrderRepo) OrderEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.OrderEvent
	for _, ev := range m.events {
		if ev.OrderID == orderID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) eventsFor(orderID string, typ domain.EventType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.OrderID == orderID && ev.Type == typ {
			n++
		}
	}
	return n
}

// Mock CatalogClient backed by a product map.
type mockCatalog struct {
	products map[string]domain.Product
	err      error
	calls    int
}

func (m *mockCatalog) FetchProduct(ctx context.Context, id string) (domain.Product, error) {
	m.calls++
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, errors.Join(domain.ErrUpstream, domain.ErrNotFound)
	}
	return p, nil
}

// recordingScheduler captures jobs instead of running them.
type recordingScheduler struct {
	mu   sync.Mutex
	jobs []CompletionJob
	err  error
}

func (r *recordingScheduler) Schedule(job CompletionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}
