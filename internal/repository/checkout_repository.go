package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCheckoutRepository struct {
	client *mongo.Client
	users  *mongo.Collection
	carts  *mongo.Collection
	outbox *mongo.Collection
}

func NewCheckoutRepository(db *mongo.Database) *MongoCheckoutRepository {
	return &MongoCheckoutRepository{
		client: db.Client(),
		users:  db.Collection("users"),
		carts:  db.Collection("carts"),
		outbox: db.Collection("checkout_events"),
	}
}

// CompleteCheckout writes the debited wallet, the drained cart and the outbox
// event in a single multi-document transaction. Either all three land or none.
func (m *MongoCheckoutRepository) CompleteCheckout(
	ctx context.Context,
	user *domain.User,
	cart *domain.Cart,
	event *domain.CheckoutEvent) error {

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	now := time.Now()

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		userUpdate := bson.M{"$set": bson.M{"walletMoney": user.WalletMoney}}
		res, errUser := m.users.UpdateOne(sc, bson.M{"email": user.Email}, userUpdate)
		if errUser != nil {
			return nil, fmt.Errorf("failed to update wallet: %w", errUser)
		}
		if res.MatchedCount == 0 {
			return nil, ErrUserNotFound
		}

		cartUpdate := bson.M{"$set": bson.M{
			"cartItems":  []domain.CartItem{},
			"updated_at": now,
		}}
		res, errCart := m.carts.UpdateOne(sc, bson.M{"email": cart.Email}, cartUpdate)
		if errCart != nil {
			return nil, fmt.Errorf("failed to drain cart: %w", errCart)
		}
		if res.MatchedCount == 0 {
			return nil, ErrCartNotFound
		}

		if _, errEvent := m.outbox.InsertOne(sc, event); errEvent != nil {
			return nil, fmt.Errorf("failed to insert checkout event: %w", errEvent)
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	cart.Items = []domain.CartItem{}
	cart.UpdatedAt = now
	return nil
}

func (m *MongoCheckoutRepository) UnprocessedEvents(ctx context.Context, limit int) ([]*domain.CheckoutEvent, error) {
	filter := bson.M{"processed": false}
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := m.outbox.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unprocessed events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*domain.CheckoutEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return events, nil
}

func (m *MongoCheckoutRepository) MarkEventAsProcessed(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"processed": true}}

	result, err := m.outbox.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("checkout event %s not found", id)
	}

	return nil
}
