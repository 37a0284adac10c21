package domain

import "time"

// CheckoutEvent is an outbox record written in the same transaction as the
// checkout itself and later published to Kafka by the outbox poller.
type CheckoutEvent struct {
	ID        string     `bson:"_id" json:"checkout_id"`
	Email     string     `bson:"email" json:"email"`
	Items     []CartItem `bson:"items" json:"items"`
	CartTotal float64    `bson:"cart_total" json:"cart_total"`
	CreatedAt time.Time  `bson:"created_at" json:"completed_at"`
	Processed bool       `bson:"processed" json:"-"`
}
