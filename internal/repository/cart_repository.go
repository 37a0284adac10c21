package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoCartRepository) FindByEmail(ctx context.Context, email string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"email": email}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	return &cart, nil
}

func (m *mongoCartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.ID == "" {
		cart.ID = primitive.NewObjectID().Hex()
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	cart.CreatedAt = now
	cart.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, cart)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	return nil
}

func (m *mongoCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now()

	filter := bson.M{"email": cart.Email}
	update := bson.M{"$set": bson.M{
		"cartItems":     cart.Items,
		"paymentOption": cart.PaymentOption,
		"updated_at":    cart.UpdatedAt,
	}}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *mongoCartRepository) RemoveItem(ctx context.Context, email, itemID string) (*RemoveResult, error) {
	filter := bson.M{"email": email}
	update := bson.M{
		"$pull": bson.M{
			"cartItems": bson.M{"_id": itemID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, ErrCartNotFound
	}
	if result.ModifiedCount == 0 {
		return nil, ErrItemNotFound
	}

	return &RemoveResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	}, nil
}

// EnsureCartIndexes creates the unique email index; called once at startup.
func EnsureCartIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := db.Collection("carts").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}

	return nil
}
