package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenlight/bakehouse-api/internal/domain/catalog"
	"github.com/ovenlight/bakehouse-api/internal/domain/discount"
	"github.com/ovenlight/bakehouse-api/internal/domain/pricing"
)

// --- Mock repositories ---

type mockCatalogRepo struct {
	products map[catalog.EntityID]catalog.Product
}

func (m *mockCatalogRepo) ListProducts(_ context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockCatalogRepo) GetProductsByIDs(_ context.Context, ids []catalog.EntityID) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetFlavorsByIDs(_ context.Context, _ []catalog.EntityID) ([]catalog.Flavor, error) {
	return nil, nil
}

func (m *mockCatalogRepo) GetDecorationsByIDs(_ context.Context, _ []catalog.EntityID) ([]catalog.Decoration, error) {
	return nil, nil
}

type mockDiscountRepo struct {
	pool         []discount.Discount
	incremented  []string
	incrementErr error
}

func (m *mockDiscountRepo) ListCurrent(_ context.Context, _ time.Time) ([]discount.Discount, error) {
	return m.pool, nil
}

func (m *mockDiscountRepo) IncrementUsage(_ context.Context, code string) error {
	m.incremented = append(m.incremented, code)
	return m.incrementErr
}

type mockOrderRepo struct {
	lastOrder *Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	return m.err
}

// --- Helpers ---

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog() *mockCatalogRepo {
	return &mockCatalogRepo{products: map[catalog.EntityID]catalog.Product{
		"cake-1": {ID: "cake-1", Name: "Layer cake", BasePrice: dec("40"), CategoryID: "cakes"},
	}}
}

func save5() discount.Discount {
	return discount.Discount{
		ID:         "disc-save5",
		Name:       "$5 off with code",
		Code:       "SAVE5",
		Type:       discount.TypeFixed,
		Value:      dec("5"),
		Trigger:    discount.TriggerCode,
		TargetType: discount.TargetAll,
		StartsAt:   time.Now().Add(-time.Hour),
		EndsAt:     time.Now().Add(time.Hour),
		Active:     true,
	}
}

func newTestService(discounts *mockDiscountRepo, orders *mockOrderRepo) *Service {
	quotes := pricing.NewService(testCatalog(), discounts, pricing.NewEngine())
	return NewService(quotes, discounts, orders)
}

// --- Tests ---

func TestPlaceOrder_EmptyItems(t *testing.T) {
	svc := newTestService(&mockDiscountRepo{}, &mockOrderRepo{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{})
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestPlaceOrder_NoCode(t *testing.T) {
	orders := &mockOrderRepo{}
	discounts := &mockDiscountRepo{}
	svc := newTestService(discounts, orders)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []Item{{ProductID: "cake-1", Quantity: 2}},
	})
	require.NoError(t, err)

	assert.True(t, dec("80").Equal(result.Order.Total), "got %s", result.Order.Total)
	assert.True(t, result.Order.DiscountTotal.IsZero())
	assert.Empty(t, result.Order.AppliedCode)
	assert.Empty(t, discounts.incremented, "no redemption to account for")
	require.NotNil(t, orders.lastOrder)
	assert.NotEmpty(t, orders.lastOrder.ID)
}

func TestPlaceOrder_WithCode(t *testing.T) {
	orders := &mockOrderRepo{}
	discounts := &mockDiscountRepo{pool: []discount.Discount{save5()}}
	svc := newTestService(discounts, orders)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:     []Item{{ProductID: "cake-1", Quantity: 1}},
		PromoCode: "SAVE5",
	})
	require.NoError(t, err)

	assert.True(t, dec("35").Equal(result.Order.Total), "got %s", result.Order.Total)
	assert.Equal(t, "SAVE5", result.Order.AppliedCode)
	assert.Equal(t, []string{"SAVE5"}, discounts.incremented,
		"usage is accounted once, after the order is created")
}

func TestPlaceOrder_InvalidCodeStillPlacesOrder(t *testing.T) {
	orders := &mockOrderRepo{}
	discounts := &mockDiscountRepo{}
	svc := newTestService(discounts, orders)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:     []Item{{ProductID: "cake-1", Quantity: 1}},
		PromoCode: "BOGUS",
	})
	require.NoError(t, err, "a bad code never blocks checkout")

	assert.True(t, dec("40").Equal(result.Order.Total))
	assert.Empty(t, result.Order.AppliedCode)
	assert.Empty(t, discounts.incremented)
	require.NotNil(t, result.Pricing.Error)
	assert.Equal(t, pricing.InvalidCodeMessage, *result.Pricing.Error)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	svc := newTestService(&mockDiscountRepo{}, &mockOrderRepo{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []Item{{ProductID: "missing", Quantity: 1}},
	})

	var pnf *pricing.ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
}

func TestPlaceOrder_CreateError(t *testing.T) {
	orders := &mockOrderRepo{err: errors.New("db write failed")}
	discounts := &mockDiscountRepo{pool: []discount.Discount{save5()}}
	svc := newTestService(discounts, orders)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:     []Item{{ProductID: "cake-1", Quantity: 1}},
		PromoCode: "SAVE5",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
	assert.Empty(t, discounts.incremented, "failed orders never consume a redemption")
}

func TestPlaceOrder_IncrementError(t *testing.T) {
	discounts := &mockDiscountRepo{
		pool:         []discount.Discount{save5()},
		incrementErr: errors.New("db error"),
	}
	svc := newTestService(discounts, &mockOrderRepo{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:     []Item{{ProductID: "cake-1", Quantity: 1}},
		PromoCode: "SAVE5",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "increment discount usage")
}
