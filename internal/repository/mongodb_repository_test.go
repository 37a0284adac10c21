package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupTestDB(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	// Replica set is required for the checkout transaction
	mongoContainer, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	err = EnsureCartIndexes(ctx, db)
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func testItem(id, productID string, cost float64, quantity int) domain.CartItem {
	return domain.CartItem{
		ID:       id,
		Product:  domain.Product{ID: productID, Name: "Tan Sweatshirt", Cost: cost},
		Quantity: quantity,
		AddedAt:  time.Now(),
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(db)
	cart, err := repo.FindByEmail(context.Background(), "nonexistent@example.com")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestCreate_ThenFind(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(db)
	email := "crio-user@gmail.com"

	cart := &domain.Cart{
		Email:         email,
		Items:         []domain.CartItem{},
		PaymentOption: "PAYMENT_OPTION_DEFAULT",
	}
	require.NoError(t, repo.Create(ctx, cart))
	assert.NotEmpty(t, cart.ID)

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, email, found.Email)
	assert.Empty(t, found.Items)
	assert.Equal(t, "PAYMENT_OPTION_DEFAULT", found.PaymentOption)
}

func TestCreate_DuplicateEmailRejected(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(db)
	email := "crio-user@gmail.com"

	require.NoError(t, repo.Create(ctx, &domain.Cart{Email: email}))
	err := repo.Create(ctx, &domain.Cart{Email: email})
	assert.Error(t, err) // unique index on email
}

func TestSave_PersistsItems(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(db)
	email := "crio-user@gmail.com"

	cart := &domain.Cart{Email: email, Items: []domain.CartItem{}}
	require.NoError(t, repo.Create(ctx, cart))

	cart.Items = append(cart.Items, testItem("item-1", "p1", 100, 2))
	require.NoError(t, repo.Save(ctx, cart))

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "p1", found.Items[0].Product.ID)
	assert.Equal(t, float64(100), found.Items[0].Product.Cost)
	assert.Equal(t, 2, found.Items[0].Quantity)
}

func TestSave_NoCart(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(db)
	err := repo.Save(context.Background(), &domain.Cart{Email: "nonexistent@example.com"})
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRemoveItem_PullsSingleItem(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(db)
	email := "crio-user@gmail.com"

	cart := &domain.Cart{Email: email, Items: []domain.CartItem{
		testItem("item-1", "p1", 100, 2),
		testItem("item-2", "p2", 50, 1),
	}}
	require.NoError(t, repo.Create(ctx, cart))

	result, err := repo.RemoveItem(ctx, email, "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.MatchedCount)
	assert.Equal(t, int64(1), result.ModifiedCount)

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "item-2", found.Items[0].ID)
}

func TestRemoveItem_UnknownItem(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(db)
	email := "crio-user@gmail.com"

	require.NoError(t, repo.Create(ctx, &domain.Cart{Email: email}))

	_, err := repo.RemoveItem(ctx, email, "nonexistent")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestProductRepository_FindByID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := db.Collection("products").InsertOne(ctx, domain.Product{
		ID: "p1", Name: "Tan Sweatshirt", Category: "Clothing", Cost: 100, Rating: 5,
	})
	require.NoError(t, err)

	repo := NewProductRepository(db)

	product, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Tan Sweatshirt", product.Name)
	assert.Equal(t, float64(100), product.Cost)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := db.Collection("users").InsertOne(ctx, domain.User{
		ID: "u1", Name: "crio-user", Email: "crio-user@gmail.com", WalletMoney: 500, Address: domain.DefaultAddress,
	})
	require.NoError(t, err)

	repo := NewUserRepository(db)

	user, err := repo.FindByEmail(ctx, "crio-user@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, float64(500), user.WalletMoney)
	assert.False(t, user.HasSetNonDefaultAddress())

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCompleteCheckout_Transactional(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	email := "crio-user@gmail.com"

	_, err := db.Collection("users").InsertOne(ctx, domain.User{
		ID: "u1", Email: email, WalletMoney: 500, Address: "221B Baker Street",
	})
	require.NoError(t, err)

	carts := NewCartRepository(db)
	cart := &domain.Cart{Email: email, Items: []domain.CartItem{
		testItem("item-1", "p1", 100, 3),
	}}
	require.NoError(t, carts.Create(ctx, cart))

	checkout := NewCheckoutRepository(db)
	user := &domain.User{Email: email, WalletMoney: 200} // already debited by the service
	event := &domain.CheckoutEvent{
		ID:        "evt-1",
		Email:     email,
		Items:     cart.Items,
		CartTotal: 300,
		CreatedAt: time.Now(),
	}

	require.NoError(t, checkout.CompleteCheckout(ctx, user, cart, event))
	assert.Empty(t, cart.Items)

	// All three documents landed
	found, err := carts.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Empty(t, found.Items)

	storedUser, err := NewUserRepository(db).FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, float64(200), storedUser.WalletMoney)

	events, err := checkout.UnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, float64(300), events[0].CartTotal)

	require.NoError(t, checkout.MarkEventAsProcessed(ctx, "evt-1"))
	events, err = checkout.UnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCompleteCheckout_UnknownUserRollsBack(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	email := "crio-user@gmail.com"

	carts := NewCartRepository(db)
	cart := &domain.Cart{Email: email, Items: []domain.CartItem{
		testItem("item-1", "p1", 100, 1),
	}}
	require.NoError(t, carts.Create(ctx, cart))

	checkout := NewCheckoutRepository(db)
	err := checkout.CompleteCheckout(ctx, &domain.User{Email: email, WalletMoney: 0}, cart, &domain.CheckoutEvent{
		ID: "evt-1", Email: email,
	})
	require.Error(t, err)

	// The cart drain must not have been applied
	found, errFind := carts.FindByEmail(ctx, email)
	require.NoError(t, errFind)
	assert.Len(t, found.Items, 1)

	events, errEvents := checkout.UnprocessedEvents(ctx, 10)
	require.NoError(t, errEvents)
	assert.Empty(t, events)
}
