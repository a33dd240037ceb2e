package models

import "time"

type CartItem struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Unit      string   `json:"unit"`
	Category  Category `json:"category"`
	Image     string   `json:"image,omitempty"`
	Price     int64    `json:"price"`
	Quantity  int      `json:"quantity"`
}

type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Add merges into an existing line for the same product.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less
// removes it. It reports whether the product was in the cart.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if qty <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = qty
		}
		return true
	}
	return false
}

func (c *Cart) Remove(productID string) bool {
	return c.SetQuantity(productID, 0)
}

func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

type CartView struct {
	ID         string     `json:"id"`
	Items      []CartItem `json:"items"`
	TotalPrice int64      `json:"totalPrice"`
	TotalItems int        `json:"totalItems"`
}

func (c *Cart) View() CartView {
	items := c.Items
	if items == nil {
		items = []CartItem{}
	}
	return CartView{ID: c.ID, Items: items, TotalPrice: c.TotalPrice(), TotalItems: c.TotalItems()}
}

type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
