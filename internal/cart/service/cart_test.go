package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	carterrors "petcare/internal/cart/errors"
	producterrors "petcare/internal/products/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/logger"
	"petcare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	userID    = "64b0000000000000000000f1"
	cartID    = "64b0000000000000000000d1"
	kibbleID  = "64b000000000000000000101"
	leashID   = "64b000000000000000000102"
	missingID = "64b000000000000000000199"
)

type mockCartRepository struct {
	cart        *model.Cart
	findErr     error
	saved       int
	conflicts   int
	ordered     string
	createCalls int
	// interfere runs just before a write lands, as another request saving the
	// stored cart first would.
	interfere func(stored *model.Cart)
}

func copyCart(c *model.Cart) *model.Cart {
	out := *c
	out.Items = append([]model.CartItem{}, c.Items...)
	return &out
}

func (m *mockCartRepository) FindActive(_ context.Context, _ string) (*model.Cart, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.cart == nil || m.cart.Status != model.CartActive {
		return nil, fmt.Errorf("%w: user %s", carterrors.ErrNotFound, userID)
	}
	return copyCart(m.cart), nil
}

func (m *mockCartRepository) Create(_ context.Context, c *model.Cart) error {
	m.createCalls++
	c.ID = cartID
	m.cart = copyCart(c)
	return nil
}

func (m *mockCartRepository) checkVersion(c *model.Cart) error {
	if m.interfere != nil && m.cart != nil {
		m.interfere(m.cart)
		m.cart.Recalculate()
		m.cart.Version++
	}
	if m.cart == nil || m.cart.Status != model.CartActive || m.cart.Version != c.Version {
		m.conflicts++
		return fmt.Errorf("%w: %s", carterrors.ErrConflict, c.ID)
	}
	return nil
}

func (m *mockCartRepository) SaveItems(_ context.Context, c *model.Cart) error {
	if err := m.checkVersion(c); err != nil {
		return err
	}
	c.Recalculate()
	c.Version++
	m.cart = copyCart(c)
	m.saved++
	return nil
}

func (m *mockCartRepository) MarkOrdered(_ context.Context, c *model.Cart) error {
	if err := m.checkVersion(c); err != nil {
		return err
	}
	m.ordered = c.ID
	m.cart.Status = model.CartOrdered
	m.cart.Version++
	return nil
}

type mockProducts struct {
	products    map[string]*model.Product
	decremented map[string]int
}

func newMockProducts() *mockProducts {
	return &mockProducts{
		products: map[string]*model.Product{
			kibbleID: {ID: kibbleID, Name: "Premium Kibble", Price: 450, Stock: 5, InStock: true, IsActive: true},
			leashID:  {ID: leashID, Name: "Reflective Leash", Price: 320.5, Stock: 1, InStock: true, IsActive: true},
		},
		decremented: map[string]int{},
	}
}

func (m *mockProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", producterrors.ErrNotFound, id)
}

func (m *mockProducts) FindByIDs(_ context.Context, ids []string) ([]*model.Product, error) {
	out := []*model.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProducts) DecrementStock(_ context.Context, id string, quantity int) error {
	p := m.products[id]
	if p.Stock < quantity {
		return fmt.Errorf("%w: %s", producterrors.ErrInsufficientStock, id)
	}
	p.Stock -= quantity
	p.InStock = p.Stock > 0
	m.decremented[id] += quantity
	return nil
}

type passthroughTx struct{}

func (passthroughTx) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func newTestService(repo *mockCartRepository, products *mockProducts) CartService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:     "info",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		CurrencySymbol: "Rs",
	}
	return NewCartService(repo, products, passthroughTx{}, cfg)
}

func cartWith(items ...model.CartItem) *model.Cart {
	c := model.NewCart(userID)
	c.ID = cartID
	c.Items = append(c.Items, items...)
	c.Recalculate()
	return c
}

func TestGet_CreatesMissingCart(t *testing.T) {
	repo := &mockCartRepository{}
	svc := newTestService(repo, newMockProducts())

	view, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, cartID, view.Cart.ID)
	assert.Empty(t, view.Lines)
	assert.Equal(t, "Rs 0.00", view.FormattedTotal)
}

func TestGet_JoinsProducts(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(
		model.CartItem{ProductID: kibbleID, Quantity: 2, Price: 450},
		model.CartItem{ProductID: missingID, Quantity: 1, Price: 10},
	)}
	svc := newTestService(repo, newMockProducts())

	view, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, "Premium Kibble", view.Lines[0].Product.Name)
	assert.Nil(t, view.Lines[1].Product)
	assert.Equal(t, "Rs 910.00", view.FormattedTotal)
	assert.Zero(t, repo.createCalls)
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name      string
		existing  []model.CartItem
		productID string
		quantity  int
		wantCode  string
		wantMsg   string
		wantCount int
	}{
		{name: "new line", productID: kibbleID, quantity: 2, wantCount: 2},
		{name: "adds to existing line", existing: []model.CartItem{{ProductID: kibbleID, Quantity: 2, Price: 450}}, productID: kibbleID, quantity: 3, wantCount: 5},
		{name: "total over stock", existing: []model.CartItem{{ProductID: kibbleID, Quantity: 4, Price: 450}}, productID: kibbleID, quantity: 2, wantCode: apperrors.CodeInvalidInput, wantMsg: MsgInsufficientStock},
		{name: "unknown product", productID: missingID, quantity: 1, wantCode: apperrors.CodeNotFound, wantMsg: MsgProductNotFound},
		{name: "zero quantity", productID: kibbleID, quantity: 0, wantCode: apperrors.CodeInvalidInput, wantMsg: MsgInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCartRepository{cart: cartWith(tt.existing...)}
			svc := newTestService(repo, newMockProducts())

			c, err := svc.Add(context.Background(), userID, tt.productID, tt.quantity)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
				assert.Equal(t, tt.wantMsg, apperrors.UserMessage(err))
				assert.Zero(t, repo.saved)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, c.TotalItems)
			assert.Equal(t, 1, repo.saved)
		})
	}
}

func TestAdd_InactiveProduct(t *testing.T) {
	products := newMockProducts()
	products.products[kibbleID].IsActive = false
	svc := newTestService(&mockCartRepository{cart: cartWith()}, products)

	_, err := svc.Add(context.Background(), userID, kibbleID, 1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestAdd_UsesCurrentPrice(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith()}
	svc := newTestService(repo, newMockProducts())

	c, err := svc.Add(context.Background(), userID, leashID, 1)
	require.NoError(t, err)
	assert.Equal(t, 320.5, c.Items[0].Price)
	assert.Equal(t, 320.5, c.TotalPrice)
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("no cart", func(t *testing.T) {
		svc := newTestService(&mockCartRepository{}, newMockProducts())
		_, err := svc.UpdateQuantity(context.Background(), userID, kibbleID, 1)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})

	t.Run("increase checks stock", func(t *testing.T) {
		repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: leashID, Quantity: 1, Price: 320.5})}
		svc := newTestService(repo, newMockProducts())

		_, err := svc.UpdateQuantity(context.Background(), userID, leashID, 2)
		assert.Equal(t, MsgInsufficientStock, apperrors.UserMessage(err))
	})

	t.Run("zero removes the line", func(t *testing.T) {
		repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: kibbleID, Quantity: 2, Price: 450})}
		svc := newTestService(repo, newMockProducts())

		c, err := svc.UpdateQuantity(context.Background(), userID, kibbleID, 0)
		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
		assert.Zero(t, c.TotalPrice)
	})

	t.Run("decrease skips stock check", func(t *testing.T) {
		products := newMockProducts()
		products.products[kibbleID].Stock = 0
		repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: kibbleID, Quantity: 3, Price: 450})}
		svc := newTestService(repo, products)

		c, err := svc.UpdateQuantity(context.Background(), userID, kibbleID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, c.TotalItems)
	})
}

func TestRemoveAndClear(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(
		model.CartItem{ProductID: kibbleID, Quantity: 1, Price: 450},
		model.CartItem{ProductID: leashID, Quantity: 1, Price: 320.5},
	)}
	svc := newTestService(repo, newMockProducts())

	c, err := svc.Remove(context.Background(), userID, kibbleID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalItems)
	assert.Equal(t, 320.5, c.TotalPrice)

	require.NoError(t, svc.Clear(context.Background(), userID))
	assert.True(t, repo.cart.IsEmpty())

	require.NoError(t, newTestService(&mockCartRepository{}, newMockProducts()).Clear(context.Background(), userID))
}

func TestCount(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: kibbleID, Quantity: 3, Price: 450})}
	count, err := newTestService(repo, newMockProducts()).Count(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = newTestService(&mockCartRepository{}, newMockProducts()).Count(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = newTestService(&mockCartRepository{findErr: errors.New("socket closed")}, newMockProducts()).Count(context.Background(), userID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestCheckout(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(
		model.CartItem{ProductID: kibbleID, Quantity: 2, Price: 450},
		model.CartItem{ProductID: leashID, Quantity: 1, Price: 320.5},
	)}
	products := newMockProducts()
	svc := newTestService(repo, products)

	c, err := svc.Checkout(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, model.CartOrdered, c.Status)
	assert.Equal(t, cartID, repo.ordered)
	assert.Equal(t, 3, products.products[kibbleID].Stock)
	assert.Equal(t, 0, products.products[leashID].Stock)
	assert.False(t, products.products[leashID].InStock)

	// The next access starts a fresh cart.
	view, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, model.CartActive, view.Cart.Status)
	assert.Equal(t, 1, repo.createCalls)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: leashID, Quantity: 2, Price: 320.5})}
	products := newMockProducts()
	svc := newTestService(repo, products)

	_, err := svc.Checkout(context.Background(), userID)
	require.Error(t, err)
	assert.Equal(t, "Insufficient stock for Reflective Leash", apperrors.UserMessage(err))
	assert.Empty(t, products.decremented)
	assert.Empty(t, repo.ordered)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := newTestService(&mockCartRepository{cart: cartWith()}, newMockProducts())

	_, err := svc.Checkout(context.Background(), userID)
	assert.Equal(t, MsgCartEmpty, apperrors.UserMessage(err))
}

func TestAdd_ReappliesOnConcurrentSave(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: kibbleID, Quantity: 2, Price: 450})}
	repo.interfere = func(stored *model.Cart) {
		stored.AddItem(leashID, 320.5, 1)
		repo.interfere = nil
	}
	svc := newTestService(repo, newMockProducts())

	c, err := svc.Add(context.Background(), userID, kibbleID, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.conflicts)
	assert.Equal(t, 1, repo.saved)
	assert.Equal(t, 3, c.QuantityOf(kibbleID))
	assert.Equal(t, 1, c.QuantityOf(leashID), "the other request's line survives")
	assert.Equal(t, 4, repo.cart.TotalItems)
	assert.Equal(t, 1670.5, repo.cart.TotalPrice)
}

func TestAdd_RechecksStockAfterConcurrentSave(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: kibbleID, Quantity: 2, Price: 450})}
	repo.interfere = func(stored *model.Cart) {
		stored.UpdateItemQuantity(kibbleID, 5)
		repo.interfere = nil
	}
	svc := newTestService(repo, newMockProducts())

	_, err := svc.Add(context.Background(), userID, kibbleID, 1)
	require.Error(t, err)
	assert.Equal(t, MsgInsufficientStock, apperrors.UserMessage(err))
	assert.Zero(t, repo.saved)
	assert.Equal(t, 5, repo.cart.QuantityOf(kibbleID))
}

func TestUpdate_GivesUpWhenCartKeepsChanging(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: kibbleID, Quantity: 2, Price: 450})}
	repo.interfere = func(stored *model.Cart) {}
	svc := newTestService(repo, newMockProducts())

	_, err := svc.UpdateQuantity(context.Background(), userID, kibbleID, 1)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, MsgCartChanged, apperrors.UserMessage(err))
	assert.Equal(t, saveAttempts, repo.conflicts)
	assert.Zero(t, repo.saved)
	assert.Equal(t, 2, repo.cart.QuantityOf(kibbleID))

	assert.True(t, apperrors.HasCode(svc.Clear(context.Background(), userID), apperrors.CodeConflict))
}

func TestUpdate_CheckedOutMeanwhile(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: kibbleID, Quantity: 2, Price: 450})}
	repo.interfere = func(stored *model.Cart) {
		stored.Status = model.CartOrdered
		repo.interfere = nil
	}
	svc := newTestService(repo, newMockProducts())

	_, err := svc.Remove(context.Background(), userID, kibbleID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Equal(t, 1, repo.conflicts)
}

func TestCheckout_CartChangedMeanwhile(t *testing.T) {
	repo := &mockCartRepository{cart: cartWith(model.CartItem{ProductID: kibbleID, Quantity: 2, Price: 450})}
	repo.interfere = func(stored *model.Cart) {
		stored.AddItem(leashID, 320.5, 1)
		repo.interfere = nil
	}
	svc := newTestService(repo, newMockProducts())

	_, err := svc.Checkout(context.Background(), userID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Empty(t, repo.ordered)
	assert.Equal(t, model.CartActive, repo.cart.Status)
}
