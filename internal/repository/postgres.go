package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"ordersvc/internal/config"
	"ordersvc/internal/domain"
)

// Open подключается к Postgres и проверяет соединение
func Open(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBSSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema создаёт таблицы заказов, если их ещё нет
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			status VARCHAR(20) NOT NULL,
			total_price DECIMAL(10, 2) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id VARCHAR(36) PRIMARY KEY,
			order_id VARCHAR(36) NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id VARCHAR(36) NOT NULL,
			quantity INTEGER NOT NULL,
			price DECIMAL(10, 2) NOT NULL
		);
	`)
	return err
}

// PostgresOrders реализация OrderRepository поверх database/sql
type PostgresOrders struct {
	db *sql.DB
}

func NewPostgresOrders(db *sql.DB) *PostgresOrders {
	return &PostgresOrders{db: db}
}

var _ OrderRepository = (*PostgresOrders)(nil)

func (r *PostgresOrders) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, status, total_price, created_at, updated_at FROM orders`)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "list orders", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, domain.Wrap(domain.KindInternal, "scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.KindInternal, "list orders", err)
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *PostgresOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, status, total_price, created_at, updated_at FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "order not found")
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "get order", err)
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PostgresOrders) itemsFor(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "list order items", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, domain.Wrap(domain.KindInternal, "scan order item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap(domain.KindInternal, "list order items", err)
	}
	return items, nil
}

// Create пишет заказ и все позиции в одной транзакции: либо всё, либо ничего
func (r *PostgresOrders) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	o.ID = uuid.NewString()
	o.Status = domain.OrderStatusPending
	o.CreatedAt = now
	o.UpdatedAt = now
	o.TotalPrice = totalOf(o.Items)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, status, total_price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.UserID, o.Status, o.TotalPrice, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return domain.Wrap(domain.KindInternal, "insert order", err)
	}

	for i := range o.Items {
		o.Items[i].ID = uuid.NewString()
		o.Items[i].OrderID = o.ID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4, $5)`,
			o.Items[i].ID, o.Items[i].OrderID, o.Items[i].ProductID, o.Items[i].Quantity, o.Items[i].Price,
		); err != nil {
			return domain.Wrap(domain.KindInternal, "insert order item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Wrap(domain.KindInternal, "commit order", err)
	}
	return nil
}

func (r *PostgresOrders) UpdateStatus(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		o.Status, o.UpdatedAt, o.ID,
	)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "update order", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.E(domain.KindNotFound, "order not found")
	}
	return nil
}

func (r *PostgresOrders) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == domain.OrderStatusCancelled {
		return nil, domain.E(domain.KindConflict, "order already cancelled")
	}
	o.Status = domain.OrderStatusCancelled
	if err := r.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
