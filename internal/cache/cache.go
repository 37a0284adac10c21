package cache

import (
	"context"
	"errors"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, email string) (*domain.Cart, error)
	Set(ctx context.Context, email string, cart *domain.Cart) error
	Delete(ctx context.Context, email string) error
}

var ErrCacheMiss = errors.New("cache miss")
