package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mittal-parth/agentic-commerce/internal/checkout"
	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

const timeFormat = time.RFC3339

type lineItemDTO struct {
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	Quantity       int64  `json:"quantity"`
	UnitPricePaise int64  `json:"unit_price_paise"`
	SubtotalPaise  int64  `json:"subtotal_paise"`
}

type checkoutSessionDTO struct {
	ID          string        `json:"id"`
	BuyerID     string        `json:"buyer_id"`
	LineItems   []lineItemDTO `json:"line_items"`
	TotalPaise  int64         `json:"total_paise"`
	Status      string        `json:"status"`
	PaymentLink string        `json:"payment_link"`
	QRImage     string        `json:"qr_image"`
	CreatedAt   string        `json:"created_at"`
	ExpiresAt   string        `json:"expires_at"`
}

func toCheckoutSessionDTO(session *checkout.Session) checkoutSessionDTO {
	dto := checkoutSessionDTO{
		ID:          session.ID,
		BuyerID:     session.BuyerID,
		LineItems:   make([]lineItemDTO, 0, len(session.LineItems)),
		TotalPaise:  session.TotalPaise,
		Status:      string(session.Status),
		PaymentLink: session.PaymentLink,
		QRImage:     session.QRBase64,
		CreatedAt:   session.CreatedAt.Format(timeFormat),
		ExpiresAt:   session.ExpiresAt.Format(timeFormat),
	}
	for _, item := range session.LineItems {
		dto.LineItems = append(dto.LineItems, lineItemDTO{
			ProductID:      item.ProductID,
			Title:          item.Title,
			Quantity:       item.Quantity,
			UnitPricePaise: item.UnitPricePaise,
			SubtotalPaise:  item.SubtotalPaise,
		})
	}
	return dto
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.Create(r.Context(), getBuyerID(r.Context()))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCheckoutSessionDTO(session))
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.Get(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutSessionDTO(session))
}

type completeCheckoutRequestDTO struct {
	UTR string `json:"utr"`
}

type paymentResultDTO struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// CompleteCheckout is the payment confirmation endpoint: a claimed UPI
// transfer (UTR) plus the Request-Signature header settles the session.
func (h *Handler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get(HeaderSignature)
	if signature == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "missing Request-Signature header")
		return
	}

	var req completeCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	sessionID := chi.URLParam(r, "session_id")
	result, err := h.payments.Confirm(r.Context(),
		sessionID, req.UTR, getIdempotencyKey(r.Context()), signature)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	log.Printf("payment confirmed session=%s order=%s request_id=%s",
		sessionID, result.OrderID, getRequestID(r.Context()))
	respondJSON(w, http.StatusOK, paymentResultDTO{OrderID: result.OrderID, Status: string(result.Status)})
}

// CancelCheckout is the explicit negative confirmation: the session moves
// to failed and a failed order is recorded, with no inventory or cart
// mutation.
func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get(HeaderSignature)
	if signature == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "missing Request-Signature header")
		return
	}

	var req completeCheckoutRequestDTO
	if r.Body != nil {
		// Body optional on cancel; a UTR may accompany a failed transfer.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.payments.Fail(r.Context(),
		chi.URLParam(r, "session_id"), req.UTR, getIdempotencyKey(r.Context()), signature)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, paymentResultDTO{OrderID: result.OrderID, Status: string(result.Status)})
}

type orderDTO struct {
	ID                string `json:"id"`
	CheckoutSessionID string `json:"checkout_session_id"`
	BuyerID           string `json:"buyer_id"`
	Status            string `json:"status"`
	UTR               string `json:"utr"`
	TotalPaise        int64  `json:"total_paise"`
	CompletedAt       string `json:"completed_at"`
}

func toOrderDTO(order *domain.Order) orderDTO {
	return orderDTO{
		ID:                order.ID,
		CheckoutSessionID: order.CheckoutSessionID,
		BuyerID:           order.BuyerID,
		Status:            string(order.Status),
		UTR:               order.UTR,
		TotalPaise:        order.TotalPaise,
		CompletedAt:       order.CompletedAt.Format(timeFormat),
	}
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrderBySessionID(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrdersByBuyerID(r.Context(), getBuyerID(r.Context()))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	items := make([]orderDTO, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderDTO(order))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orders": items,
		"count":  len(items),
	})
}
