package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/cache"
	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	carts         repository.CartRepository
	products      repository.ProductRepository
	checkout      repository.CheckoutRepository
	cache         cache.CartCache
	sfg           singleflight.Group // Prevents cache stampede
	locks         userLocks
	paymentOption string
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	checkout repository.CheckoutRepository,
	cache cache.CartCache,
	defaultPaymentOption string) *CartService {

	return &CartService{
		carts:         carts,
		products:      products,
		checkout:      checkout,
		cache:         cache,
		paymentOption: defaultPaymentOption,
	}
}

// GetCartByUser fetches the user's cart, read-through the cache.
func (s *CartService) GetCartByUser(ctx context.Context, user *domain.User) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(user.Email, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, user.Email)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.carts.FindByEmail(ctx, user.Email)
		if errGet != nil {
			if errors.Is(errGet, repository.ErrCartNotFound) {
				return nil, notFound("User does not have a cart")
			}
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), user.Email, cart)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddProductToCart appends a new line to the user's cart, creating the cart on
// first use. It never touches an existing line; callers must use
// UpdateProductInCart for that.
func (s *CartService) AddProductToCart(ctx context.Context, user *domain.User, productID string, quantity int) (*domain.Cart, error) {
	unlock := s.locks.lock(user.Email)
	defer unlock()

	cart, err := s.carts.FindByEmail(ctx, user.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			return nil, err
		}
		cart = &domain.Cart{
			Email:         user.Email,
			Items:         []domain.CartItem{},
			PaymentOption: s.paymentOption,
		}
		if errCreate := s.carts.Create(ctx, cart); errCreate != nil {
			log.Printf("failed to create cart for %s: %v", user.Email, errCreate)
			return nil, internalError("Internal server error")
		}
	}

	if cart.FindItem(productID) >= 0 {
		return nil, invalidRequest("Product already in cart. Use the cart sidebar to update or remove product from cart")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, invalidRequest("Product doesn't exist in database")
		}
		return nil, err
	}

	// Quantity is stored as supplied; the transport layer owns its validation.
	cart.Items = append(cart.Items, domain.CartItem{
		ID:       uuid.NewString(),
		Product:  *product,
		Quantity: quantity,
		AddedAt:  time.Now(),
	})

	if errSave := s.carts.Save(ctx, cart); errSave != nil {
		return nil, errSave
	}

	s.invalidateCache(user.Email)
	return cart, nil
}

// UpdateProductInCart overwrites the quantity of a line already in the cart.
func (s *CartService) UpdateProductInCart(ctx context.Context, user *domain.User, productID string, quantity int) (*domain.Cart, error) {
	unlock := s.locks.lock(user.Email)
	defer unlock()

	cart, err := s.carts.FindByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, invalidRequest("User does not have a cart. Use POST to create cart and add a product")
		}
		return nil, err
	}

	if _, errProduct := s.products.FindByID(ctx, productID); errProduct != nil {
		if errors.Is(errProduct, repository.ErrProductNotFound) {
			return nil, invalidRequest("Product doesn't exist in database")
		}
		return nil, errProduct
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, invalidRequest("Product not in cart")
	}

	cart.Items[idx].Quantity = quantity

	if errSave := s.carts.Save(ctx, cart); errSave != nil {
		return nil, errSave
	}

	s.invalidateCache(user.Email)
	return cart, nil
}

// DeleteProductFromCart removes a single line by its item id and returns the
// store's acknowledgment.
func (s *CartService) DeleteProductFromCart(ctx context.Context, user *domain.User, productID string) (*repository.RemoveResult, error) {
	unlock := s.locks.lock(user.Email)
	defer unlock()

	cart, err := s.carts.FindByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, invalidRequest("User does not have a cart")
		}
		return nil, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, invalidRequest("Product not in cart")
	}

	result, err := s.carts.RemoveItem(ctx, user.Email, cart.Items[idx].ID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) || errors.Is(err, repository.ErrItemNotFound) {
			return nil, invalidRequest("Product not in cart")
		}
		return nil, err
	}

	s.invalidateCache(user.Email)
	return result, nil
}

// Checkout validates the cart, debits the wallet by the cart total computed
// from the embedded product snapshots, and drains the cart. The guards run
// strictly in order; the first violated one fails the whole operation.
func (s *CartService) Checkout(ctx context.Context, user *domain.User) (*domain.Cart, error) {
	unlock := s.locks.lock(user.Email)
	defer unlock()

	cart, err := s.carts.FindByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, notFound("User cart not found")
		}
		return nil, err
	}

	if len(cart.Items) == 0 {
		return nil, invalidRequest("User cart is empty")
	}

	if !user.HasSetNonDefaultAddress() {
		return nil, invalidRequest("User address is not set")
	}

	cartTotal := cart.Total()
	if cartTotal > user.WalletMoney {
		return nil, invalidRequest("Wallet balance insufficient")
	}

	event := &domain.CheckoutEvent{
		ID:        uuid.NewString(),
		Email:     user.Email,
		Items:     cart.Items,
		CartTotal: cartTotal,
		CreatedAt: time.Now(),
	}

	debited := *user
	debited.WalletMoney = user.WalletMoney - cartTotal

	if errComplete := s.checkout.CompleteCheckout(ctx, &debited, cart, event); errComplete != nil {
		return nil, errComplete
	}

	user.WalletMoney = debited.WalletMoney

	s.invalidateCache(user.Email)
	return cart, nil
}

func (s *CartService) invalidateCache(email string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, email)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v \n", errInvalidate)
	}
}
