package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/conversation"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/session"
)

// MessageHandler runs an inbound chat message and returns the replies.
type MessageHandler interface {
	Handle(ctx context.Context, in conversation.Inbound) (conversation.Result, error)
}

type Handler struct {
	messages MessageHandler
	catalog  catalog.Store
	orders   order.Repository
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(messages MessageHandler, products catalog.Store, orders order.Repository, log *zap.Logger) *Handler {
	return &Handler{
		messages: messages,
		catalog:  products,
		orders:   orders,
		validate: validator.New(),
		log:      log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "chat-order-service",
	})
}

type messageRequest struct {
	MessageID  string `json:"messageId" validate:"max=256"`
	CustomerID string `json:"customerId" validate:"required,max=64"`
	Text       string `json:"text" validate:"max=4096"`
}

type messageResponse struct {
	Replies   []gateway.Message `json:"replies"`
	OrderID   string            `json:"orderId,omitempty"`
	Duplicate bool              `json:"duplicate,omitempty"`
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.messages.Handle(ctx, conversation.Inbound{
		MessageID:  req.MessageID,
		CustomerID: req.CustomerID,
		Text:       req.Text,
	})
	if err != nil {
		if apperror.IsRetryable(err) {
			writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry later")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := messageResponse{Replies: res.Replies, Duplicate: res.Duplicate}
	if resp.Replies == nil {
		resp.Replies = []gateway.Message{}
	}
	if res.Order != nil {
		resp.OrderID = res.Order.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	products, err := h.catalog.ListActive(ctx, catalog.ListingLimit)
	if err != nil {
		h.log.Error("list products failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

type productRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Active      *bool   `json:"active"`
}

func (h *Handler) PutProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}

	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	p := catalog.Product{
		ID:          productID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Active:      req.Active == nil || *req.Active,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.catalog.Upsert(ctx, p); err != nil {
		h.log.Error("upsert product failed", zap.String("product_id", productID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type stockRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Stock     *int   `json:"stock" validate:"required,gte=0"`
}

func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.catalog.SetStock(ctx, req.ProductID, *req.Stock); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.log.Error("set stock failed", zap.String("product_id", req.ProductID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update stock")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		h.log.Error("load order failed", zap.String("order_id", orderID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := session.NormalizeCustomerID(chi.URLParam(r, "customerId"))
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "invalid customerId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		h.log.Error("list orders failed", zap.String("customer_id", customerID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
