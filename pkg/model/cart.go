package model

import (
	"fmt"
	"math"
	"time"
)

const (
	CartActive    = "active"
	CartOrdered   = "ordered"
	CartAbandoned = "abandoned"
)

type CartItem struct {
	ProductID string  `json:"product_id" bson:"product_id" validate:"required,mongodb"`
	Quantity  int     `json:"quantity" bson:"quantity" validate:"min=1"`
	Price     float64 `json:"price" bson:"price" validate:"min=0"`
}

func (i CartItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

type Cart struct {
	ID         string     `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     string     `json:"user_id" bson:"user_id"`
	Items      []CartItem `json:"items" bson:"items"`
	TotalItems int        `json:"total_items" bson:"total_items"`
	TotalPrice float64    `json:"total_price" bson:"total_price"`
	Status     string     `json:"status" bson:"status"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
	// Version counts saves; a write only lands on the version it was read at.
	Version int64 `json:"-" bson:"version"`
}

func NewCart(userID string) *Cart {
	return &Cart{
		UserID: userID,
		Items:  []CartItem{},
		Status: CartActive,
	}
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Item(productID string) (CartItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

func (c *Cart) QuantityOf(productID string) int {
	item, _ := c.Item(productID)
	return item.Quantity
}

// AddItem adds quantity to an existing line (keeping its price) and drops the line when it
// reaches zero. A new line is only created for a positive quantity.
func (c *Cart) AddItem(productID string, price float64, quantity int) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += quantity
		if c.Items[i].Quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
	} else if quantity > 0 {
		c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity, Price: price})
	}
	c.Recalculate()
}

// UpdateItemQuantity sets the quantity of an existing line; zero or less removes it.
// Unknown products are ignored.
func (c *Cart) UpdateItemQuantity(productID string, quantity int) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}
	c.Recalculate()
}

func (c *Cart) RemoveItem(productID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.Recalculate()
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Recalculate()
}

func (c *Cart) Recalculate() {
	c.TotalItems = 0
	total := 0.0
	for _, item := range c.Items {
		c.TotalItems += item.Quantity
		total += item.Subtotal()
	}
	c.TotalPrice = math.Round(total*100) / 100
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func FormatMoney(symbol string, amount float64) string {
	return fmt.Sprintf("%s %.2f", symbol, amount)
}

// CartLine is a cart item joined with its product for rendering.
type CartLine struct {
	CartItem
	Product *Product
}
