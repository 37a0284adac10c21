package domain

import "time"

// Product is read-only from this service's point of view. Carts embed a full
// copy of it at add time, so later price changes never alter a pending cart.
type Product struct {
	ID       string  `bson:"_id,omitempty" json:"_id"`
	Name     string  `bson:"name" json:"name"`
	Category string  `bson:"category" json:"category"`
	Cost     float64 `bson:"cost" json:"cost"`
	Rating   int     `bson:"rating" json:"rating"`
	Image    string  `bson:"image" json:"image"`
}

// CartItem is one line in a cart. Product is a value snapshot, not a reference.
type CartItem struct {
	ID       string    `bson:"_id" json:"_id"`
	Product  Product   `bson:"product" json:"product"`
	Quantity int       `bson:"quantity" json:"quantity"`
	AddedAt  time.Time `bson:"added_at" json:"added_at"`
}

// Cart holds one user's pending purchase, keyed by email (unique per user).
type Cart struct {
	ID            string     `bson:"_id,omitempty" json:"_id,omitempty"`
	Email         string     `bson:"email" json:"email"`
	Items         []CartItem `bson:"cartItems" json:"cartItems"`
	PaymentOption string     `bson:"paymentOption" json:"paymentOption"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
}

// FindItem returns the index of the first item whose product id matches, or -1.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Total is the checkout amount, computed from the embedded product snapshots.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Product.Cost * float64(item.Quantity)
	}
	return total
}
