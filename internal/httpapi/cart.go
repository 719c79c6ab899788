package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

type addItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type updateQuantityRequestDTO struct {
	Quantity int64 `json:"quantity"`
}

type cartItemDTO struct {
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	Quantity       int64  `json:"quantity"`
	UnitPricePaise int64  `json:"unit_price_paise"`
	SubtotalPaise  int64  `json:"subtotal_paise"`
}

type cartDTO struct {
	BuyerID    string        `json:"buyer_id"`
	Items      []cartItemDTO `json:"items"`
	TotalPaise int64         `json:"total_paise"`
}

func toCartDTO(view *domain.CartView) cartDTO {
	dto := cartDTO{
		BuyerID:    view.BuyerID,
		Items:      make([]cartItemDTO, 0, len(view.Items)),
		TotalPaise: view.TotalPaise,
	}
	for _, item := range view.Items {
		dto.Items = append(dto.Items, cartItemDTO{
			ProductID:      item.ProductID,
			Title:          item.Title,
			Quantity:       item.Quantity,
			UnitPricePaise: item.UnitPricePaise,
			SubtotalPaise:  item.SubtotalPaise,
		})
	}
	return dto
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.ViewCart(r.Context(), getBuyerID(r.Context()))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(view))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "product_id is required")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "quantity must be positive")
		return
	}

	view, err := h.cart.AddItem(r.Context(), getBuyerID(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartDTO(view))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "product_id is required")
		return
	}

	var req updateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	view, err := h.cart.UpdateItem(r.Context(), getBuyerID(r.Context()), productID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(view))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "product_id is required")
		return
	}

	view, err := h.cart.RemoveItem(r.Context(), getBuyerID(r.Context()), productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(view))
}
