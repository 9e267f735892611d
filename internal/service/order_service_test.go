package service

import (
	"context"
	"testing"

	"ordersvc/internal/domain"
	"ordersvc/internal/repository"
)

type stubProducts struct {
	byID map[string]domain.Product
	down bool
}

func (f *stubProducts) Fetch(ctx context.Context, id string) (*domain.Product, error) {
	if f.down {
		return nil, domain.E(domain.KindUnavailable, "product service unreachable")
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.Ef(domain.KindNotFound, "product not found: %s", id)
	}
	cp := p
	return &cp, nil
}

func setup(t *testing.T) (*OrderService, *stubProducts, *repository.MemoryOrders) {
	t.Helper()
	repo := repository.NewMemoryOrders()
	products := &stubProducts{byID: map[string]domain.Product{
		"p1": {ID: "p1", Name: "Keyboard", Price: 10},
		"p2": {ID: "p2", Name: "Mouse", Price: 25.5},
	}}
	return NewOrderService(repo, products), products, repo
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	o, err := svc.Create(ctx, "u1", []CreateItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID == "" {
		t.Fatalf("no id")
	}
	if o.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending, got %v", o.Status)
	}
	if len(o.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(o.Items))
	}
	if o.TotalPrice != 2*10+1*25.5 {
		t.Fatalf("total expected 45.5, got %v", o.TotalPrice)
	}
	for _, it := range o.Items {
		if it.ID == "" || it.OrderID != o.ID {
			t.Fatalf("item not linked to order: %+v", it)
		}
	}
}

func TestCreateOrder_UnknownProductPersistsNothing(t *testing.T) {
	ctx := context.Background()
	svc, _, repo := setup(t)

	_, err := svc.Create(ctx, "u1", []CreateItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p999", Quantity: 1},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation kind, got %v", domain.KindOf(err))
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no orders persisted, got %d", len(list))
	}
}

func TestCreateOrder_ProductServiceDownPersistsNothing(t *testing.T) {
	ctx := context.Background()
	svc, products, repo := setup(t)
	products.down = true

	_, err := svc.Create(ctx, "u1", []CreateItem{{ProductID: "p1", Quantity: 1}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation kind, got %v", domain.KindOf(err))
	}
	if list, _ := repo.List(ctx); len(list) != 0 {
		t.Fatalf("expected no orders persisted")
	}
}

func TestCreateOrder_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	cases := []struct {
		name   string
		userID string
		items  []CreateItem
	}{
		{"no user", "", []CreateItem{{ProductID: "p1", Quantity: 1}}},
		{"no items", "u1", nil},
		{"zero quantity", "u1", []CreateItem{{ProductID: "p1", Quantity: 0}}},
		{"no product id", "u1", []CreateItem{{ProductID: "", Quantity: 1}}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.userID, tc.items); domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestHistoricalPricing(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := setup(t)

	o, err := svc.Create(ctx, "u1", []CreateItem{{ProductID: "p1", Quantity: 2}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// цена товара выросла после оформления заказа
	products.byID["p1"] = domain.Product{ID: "p1", Name: "Keyboard", Price: 99}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Items[0].Price != 10 {
		t.Fatalf("snapshot price changed: %v", got.Items[0].Price)
	}
	if got.TotalPrice != 20 {
		t.Fatalf("total changed: %v", got.TotalPrice)
	}
	// обогащение при этом показывает актуальную цену
	if got.Items[0].Product == nil || got.Items[0].Product.Price != 99 {
		t.Fatalf("expected enriched current price 99, got %+v", got.Items[0].Product)
	}
}

func TestGet_EnrichmentSoftFail(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := setup(t)

	o, err := svc.Create(ctx, "u1", []CreateItem{{ProductID: "p1", Quantity: 1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	products.down = true
	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("read must survive product outage: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items lost: %d", len(got.Items))
	}
	if got.Items[0].Product != nil {
		t.Fatalf("expected no enrichment, got %+v", got.Items[0].Product)
	}
	if got.Items[0].Price != 10 {
		t.Fatalf("snapshot price lost: %v", got.Items[0].Price)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.Get(context.Background(), "missing")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	o, err := svc.Create(ctx, "u1", []CreateItem{{ProductID: "p1", Quantity: 1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upd, err := svc.UpdateStatus(ctx, o.ID, "processing")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Status != domain.OrderStatusProcessing {
		t.Fatalf("expected processing, got %v", upd.Status)
	}

	// переходы по значению не ограничены: completed -> pending проходит
	if _, err := svc.UpdateStatus(ctx, o.ID, "completed"); err != nil {
		t.Fatalf("update to completed: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, o.ID, "pending"); err != nil {
		t.Fatalf("update back to pending: %v", err)
	}
}

func TestUpdateStatus_InvalidValue(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	o, err := svc.Create(ctx, "u1", []CreateItem{{ProductID: "p1", Quantity: 1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, o.ID, "bogus"); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.OrderStatusPending {
		t.Fatalf("status must stay pending, got %v", got.Status)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.UpdateStatus(context.Background(), "missing", "processing")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelTwice(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	o, err := svc.Create(ctx, "u1", []CreateItem{{ProductID: "p1", Quantity: 1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %v", cancelled.Status)
	}

	_, err = svc.Cancel(ctx, o.ID)
	if domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict on second cancel, got %v", err)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.OrderStatusCancelled {
		t.Fatalf("status changed by failed cancel: %v", got.Status)
	}
}

func TestCancel_CompletedAllowed(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	o, err := svc.Create(ctx, "u1", []CreateItem{{ProductID: "p1", Quantity: 1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, o.ID, "completed"); err != nil {
		t.Fatal(err)
	}

	cancelled, err := svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("cancel of completed order: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %v", cancelled.Status)
	}
}

func TestCancel_NotFound(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.Cancel(context.Background(), "missing")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
