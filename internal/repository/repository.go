package repository

import (
	"context"

	"ordersvc/internal/domain"
)

// OrderRepository интерфейс хранилища заказов
type OrderRepository interface {
	List(ctx context.Context) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Create атомарно сохраняет заказ вместе с позициями: генерирует id,
	// ставит статус pending, таймстемпы и итоговую сумму
	Create(ctx context.Context, o *domain.Order) error
	// UpdateStatus меняет только status и updated_at существующего заказа
	UpdateStatus(ctx context.Context, o *domain.Order) error
	// Cancel переводит заказ в cancelled; повторная отмена — conflict
	Cancel(ctx context.Context, id string) (*domain.Order, error)
}

// totalOf итоговая сумма заказа: Σ(price * quantity) по позициям
func totalOf(items []domain.OrderItem) float64 {
	var total float64
	for i := range items {
		total += items[i].Price * float64(items[i].Quantity)
	}
	return total
}
