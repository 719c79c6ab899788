package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

type productDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	PricePaise   int64  `json:"price_paise"`
	InventoryQty int64  `json:"inventory_qty"`
	Category     string `json:"category,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

func toProductDTO(p *domain.Product) productDTO {
	return productDTO{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		PricePaise:   p.PricePaise,
		InventoryQty: p.InventoryQty,
		Category:     p.Category,
		ImageURL:     p.ImageURL,
	}
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	products, err := h.catalogue.Search(r.Context(), q, category, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	items := make([]productDTO, 0, len(products))
	for _, p := range products {
		items = append(items, toProductDTO(p))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": items,
		"count":    len(items),
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	product, err := h.catalogue.Lookup(r.Context(), productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTO(product))
}
