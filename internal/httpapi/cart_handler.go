package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/repository"
	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/service"
	"github.com/go-chi/chi/v5"
)

// CartService is what the adapter needs from the core; *service.CartService
// satisfies it.
type CartService interface {
	GetCartByUser(ctx context.Context, user *domain.User) (*domain.Cart, error)
	AddProductToCart(ctx context.Context, user *domain.User, productID string, quantity int) (*domain.Cart, error)
	UpdateProductInCart(ctx context.Context, user *domain.User, productID string, quantity int) (*domain.Cart, error)
	DeleteProductFromCart(ctx context.Context, user *domain.User, productID string) (*repository.RemoveResult, error)
	Checkout(ctx context.Context, user *domain.User) (*domain.Cart, error)
}

type CartHandler struct {
	service CartService
	timeout time.Duration
}

func NewCartHandler(service CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		service: service,
		timeout: timeout,
	}
}

type CartItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart, err := h.service.GetCartByUser(ctx, user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	cart, err := h.service.AddProductToCart(ctx, user, req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	cart, err := h.service.UpdateProductInCart(ctx, user, req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	result, err := h.service.DeleteProductFromCart(ctx, user, productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart, err := h.service.Checkout(ctx, user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts service error kinds to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error) {
	kind, ok := service.KindOf(err)
	if !ok {
		log.Printf("unclassified service error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	switch kind {
	case service.KindNotFound:
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case service.KindInvalidRequest:
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
