package service

import (
	"context"
	"errors"

	carterrors "petcare/internal/cart/errors"
	"petcare/internal/cart/repository"
	producterrors "petcare/internal/products/errors"
	"petcare/pkg/config"
	mongotx "petcare/pkg/db/mongo"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	MsgProductNotFound    = "Product not found"
	MsgInsufficientStock  = "Insufficient stock"
	MsgInvalidQuantity    = "Quantity must be at least 1"
	MsgCartEmpty          = "Your cart is empty"
	MsgCartChanged        = "Your cart was changed in another window. Please review it and try again."
	msgInsufficientPrefix = "Insufficient stock for "
)

// saveAttempts bounds how often a change is reapplied to a cart that keeps moving.
const saveAttempts = 3

type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Product, error)
	DecrementStock(ctx context.Context, id string, quantity int) error
}

// View is a cart with its lines joined to their products.
type View struct {
	Cart           *model.Cart
	Lines          []model.CartLine
	FormattedTotal string
}

type CartService interface {
	Get(ctx context.Context, userID string) (*View, error)
	Add(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error)
	Remove(ctx context.Context, userID, productID string) (*model.Cart, error)
	Clear(ctx context.Context, userID string) error
	Count(ctx context.Context, userID string) (int, error)
	Checkout(ctx context.Context, userID string) (*model.Cart, error)
	FormatTotal(c *model.Cart) string
}

type cartService struct {
	repo     repository.CartRepository
	products ProductFinder
	tx       mongotx.TransactionManager
	cfg      *config.Config
}

func NewCartService(repo repository.CartRepository, products ProductFinder, tx mongotx.TransactionManager, cfg *config.Config) CartService {
	return &cartService{
		repo:     repo,
		products: products,
		tx:       tx,
		cfg:      cfg,
	}
}

func (s *cartService) FormatTotal(c *model.Cart) string {
	if c == nil {
		return model.FormatMoney(s.cfg.CurrencySymbol, 0)
	}
	return model.FormatMoney(s.cfg.CurrencySymbol, c.TotalPrice)
}

// active returns the user's active cart, creating one when create is set.
// Without create a missing cart is reported as NotFound.
func (s *cartService) active(ctx context.Context, userID string, create bool) (*model.Cart, error) {
	c, err := s.repo.FindActive(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, carterrors.ErrNotFound) {
		return nil, s.internal("Failed to load cart", err, userID)
	}
	if !create {
		return nil, apperrors.NotFound("Cart")
	}

	c = model.NewCart(userID)
	if err := s.repo.Create(ctx, c); err != nil {
		if !mongotx.IsDuplicateKey(err) {
			return nil, s.internal("Failed to create cart", err, userID)
		}
		// Another request created it first.
		if c, err = s.repo.FindActive(ctx, userID); err != nil {
			return nil, s.internal("Failed to load cart", err, userID)
		}
	}
	return c, nil
}

// update applies change to the active cart and saves it. When another request saved
// the cart in between, the cart is reloaded and change runs again on the fresh copy.
func (s *cartService) update(ctx context.Context, userID string, create bool, failMsg string, change func(c *model.Cart) error) (*model.Cart, error) {
	for attempt := 1; ; attempt++ {
		c, err := s.active(ctx, userID, create)
		if err != nil {
			return nil, err
		}
		if err := change(c); err != nil {
			return nil, err
		}

		err = s.repo.SaveItems(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, carterrors.ErrConflict) {
			return nil, s.internal(failMsg, err, userID)
		}
		if attempt == saveAttempts {
			s.cfg.Log.Warn("Cart kept changing, giving up", "user_id", userID, "attempts", attempt)
			return nil, apperrors.Conflict(MsgCartChanged)
		}
		s.cfg.Log.Debug("Cart changed concurrently, retrying", "user_id", userID, "attempt", attempt)
	}
}

func (s *cartService) internal(message string, err error, userID string) error {
	s.cfg.Log.Error(message, "user_id", userID, "error", err)
	return apperrors.Internal(message, err)
}

func (s *cartService) Get(ctx context.Context, userID string) (*View, error) {
	c, err := s.active(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, s.internal("Failed to load cart products", err, userID)
	}
	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]model.CartLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, model.CartLine{CartItem: item, Product: byID[item.ProductID]})
	}

	return &View{Cart: c, Lines: lines, FormattedTotal: s.FormatTotal(c)}, nil
}

// product loads a product that can be sold; inactive ones count as missing.
func (s *cartService) product(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, producterrors.ErrNotFound) || errors.Is(err, producterrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Product", id)
		}
		s.cfg.Log.Error("Failed to load product", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to load product", err)
	}
	if !p.IsActive {
		return nil, apperrors.NotFoundWithID("Product", id)
	}
	return p, nil
}

// Add puts quantity of a product in the cart at its current price. The cart's
// total for that product may not exceed the stock on hand.
func (s *cartService) Add(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidInput(MsgInvalidQuantity)
	}

	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, userID, true, "Failed to update cart", func(c *model.Cart) error {
		if !p.InStock || p.Stock < c.QuantityOf(productID)+quantity {
			return apperrors.InvalidInput(MsgInsufficientStock)
		}
		c.AddItem(productID, p.Price, quantity)
		return nil
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	return s.update(ctx, userID, false, "Failed to update cart", func(c *model.Cart) error {
		if quantity > c.QuantityOf(productID) {
			p, err := s.products.FindByID(ctx, productID)
			if err != nil || !p.IsActive || p.Stock < quantity {
				return apperrors.InvalidInput(MsgInsufficientStock)
			}
		}
		c.UpdateItemQuantity(productID, quantity)
		return nil
	})
}

func (s *cartService) Remove(ctx context.Context, userID, productID string) (*model.Cart, error) {
	return s.update(ctx, userID, false, "Failed to update cart", func(c *model.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

// Clear empties the active cart. Having no cart is not an error.
func (s *cartService) Clear(ctx context.Context, userID string) error {
	_, err := s.update(ctx, userID, false, "Failed to clear cart", func(c *model.Cart) error {
		c.Clear()
		return nil
	})
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil
	}
	return err
}

func (s *cartService) Count(ctx context.Context, userID string) (int, error) {
	c, err := s.repo.FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, carterrors.ErrNotFound) {
			return 0, nil
		}
		return 0, s.internal("Failed to load cart", err, userID)
	}
	return c.TotalItems, nil
}

// Checkout takes every line off stock and closes the cart in one transaction, so a
// line that is short leaves all stock and the cart untouched.
func (s *cartService) Checkout(ctx context.Context, userID string) (*model.Cart, error) {
	var ordered *model.Cart

	err := s.tx.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		c, err := s.active(sessCtx, userID, false)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return apperrors.InvalidInput(MsgCartEmpty)
		}

		for _, item := range c.Items {
			p, err := s.product(sessCtx, item.ProductID)
			if err != nil {
				return err
			}
			if p.Stock < item.Quantity {
				return apperrors.InvalidInput(msgInsufficientPrefix + p.Name)
			}
			if err := s.products.DecrementStock(sessCtx, p.ID, item.Quantity); err != nil {
				if errors.Is(err, producterrors.ErrInsufficientStock) {
					return apperrors.InvalidInput(msgInsufficientPrefix + p.Name)
				}
				return apperrors.Internal("Failed to update stock", err)
			}
		}

		if err := s.repo.MarkOrdered(sessCtx, c); err != nil {
			if errors.Is(err, carterrors.ErrConflict) {
				return apperrors.Conflict(MsgCartChanged)
			}
			return apperrors.Internal("Failed to place order", err)
		}
		c.Status = model.CartOrdered
		ordered = c
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, s.internal("Checkout failed", err, userID)
	}

	s.cfg.Log.Info("Order placed", "cart_id", ordered.ID, "user_id", userID, "items", ordered.TotalItems, "total", ordered.TotalPrice)
	return ordered, nil
}
