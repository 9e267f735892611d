package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordersvc/internal/domain"
)

// MemoryOrders in-memory хранилище заказов; используется в тестах и для
// локального запуска без Postgres. Одна критическая секция на запись
// даёт ту же атомарность создания, что транзакция в БД.
type MemoryOrders struct {
	mu         sync.RWMutex
	ordersByID map[string]domain.Order
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{ordersByID: make(map[string]domain.Order)}
}

var _ OrderRepository = (*MemoryOrders)(nil)

func (m *MemoryOrders) List(ctx context.Context) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Order, 0, len(m.ordersByID))
	for _, o := range m.ordersByID {
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (m *MemoryOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.ordersByID[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "order not found")
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (m *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	o.ID = uuid.NewString()
	o.Status = domain.OrderStatusPending
	o.CreatedAt = now
	o.UpdatedAt = now
	o.TotalPrice = totalOf(o.Items)

	for i := range o.Items {
		o.Items[i].ID = uuid.NewString()
		o.Items[i].OrderID = o.ID
	}

	m.ordersByID[o.ID] = copyOrder(*o)
	return nil
}

func (m *MemoryOrders) UpdateStatus(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.ordersByID[o.ID]
	if !ok {
		return domain.E(domain.KindNotFound, "order not found")
	}
	o.UpdatedAt = time.Now().UTC()
	stored.Status = o.Status
	stored.UpdatedAt = o.UpdatedAt
	m.ordersByID[o.ID] = stored
	return nil
}

func (m *MemoryOrders) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	o, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == domain.OrderStatusCancelled {
		return nil, domain.E(domain.KindConflict, "order already cancelled")
	}
	o.Status = domain.OrderStatusCancelled
	if err := m.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// copyOrder глубокая копия, чтобы вызывающий не мутировал хранилище
func copyOrder(o domain.Order) domain.Order {
	cp := o
	cp.Items = make([]domain.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return cp
}
