package service

import (
	"context"
	"log/slog"

	"ordersvc/internal/domain"
	"ordersvc/internal/repository"
)

// ProductFetcher читающий контракт сервиса продуктов
type ProductFetcher interface {
	Fetch(ctx context.Context, id string) (*domain.Product, error)
}

// OrderService реализует логику заказов: создание, чтение, смена статуса, отмена
type OrderService struct {
	orders   repository.OrderRepository
	products ProductFetcher
}

func NewOrderService(orders repository.OrderRepository, products ProductFetcher) *OrderService {
	return &OrderService{orders: orders, products: products}
}

// CreateItem позиция входящего запроса на создание заказа
type CreateItem struct {
	ProductID string
	Quantity  int
}

// Create проверяет позиции, снимает текущие цены из сервиса продуктов и
// атомарно сохраняет заказ. Любая ошибка получения товара отклоняет весь
// запрос ещё до записи в БД.
func (s *OrderService) Create(ctx context.Context, userID string, items []CreateItem) (*domain.Order, error) {
	if userID == "" {
		return nil, domain.E(domain.KindValidation, "user_id is required")
	}
	if len(items) == 0 {
		return nil, domain.E(domain.KindValidation, "at least one item is required")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return nil, domain.E(domain.KindValidation, "product_id is required for each item")
		}
		if it.Quantity <= 0 {
			return nil, domain.Ef(domain.KindValidation, "quantity must be greater than zero for product %s", it.ProductID)
		}
	}

	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		p, err := s.products.Fetch(ctx, it.ProductID)
		if err != nil {
			return nil, domain.Wrap(domain.KindValidation, "invalid product id: "+it.ProductID, err)
		}
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     p.Price, // снимок цены на момент создания
		})
	}

	o := &domain.Order{UserID: userID, Items: orderItems}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// Get возвращает заказ и best-effort дотягивает данные товаров для
// отображения; недоступность сервиса продуктов чтение не ломает
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range o.Items {
		p, err := s.products.Fetch(ctx, o.Items[i].ProductID)
		if err != nil {
			slog.Warn("product enrichment skipped",
				"order_id", o.ID,
				"product_id", o.Items[i].ProductID,
				"error", err,
			)
			continue
		}
		o.Items[i].Product = p
	}
	return o, nil
}

// UpdateStatus принимает любое известное значение статуса; легальность
// перехода проверяется только на пути отмены
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, domain.Ef(domain.KindValidation, "invalid status: %s", status)
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = next
	if err := s.orders.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.Cancel(ctx, id)
}
