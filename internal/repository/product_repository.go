package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection("products"),
	}
}

func (m *mongoProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product

	filter := bson.M{"_id": id}
	err := m.collection.FindOne(ctx, filter).Decode(&product)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return &product, nil
}
