package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

// DiscoveryDocument is the static merchant profile served at
// /.well-known/ucp. Built once at startup; serving it involves no
// per-request computation.
type DiscoveryDocument struct {
	UCP      ucpInfo        `json:"ucp"`
	Payment  paymentProfile `json:"payment"`
	Merchant merchantInfo   `json:"merchant"`
}

type ucpInfo struct {
	Version      string   `json:"version"`
	ShopID       string   `json:"shop_id"`
	Endpoint     string   `json:"endpoint"`
	Capabilities []string `json:"capabilities"`
}

type paymentProfile struct {
	Handlers []paymentHandler `json:"handlers"`
}

type paymentHandler struct {
	Method string `json:"method"`
	VPA    string `json:"vpa"`
	Payee  string `json:"payee"`
}

type merchantInfo struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

const protocolVersion = "2026-01-01"

// NewDiscoveryDocument assembles the merchant profile. The shop id is
// unique per process, matching how agents cache-bust across restarts.
func NewDiscoveryDocument(endpoint, merchantName, merchantVPA string, categories []string) *DiscoveryDocument {
	return &DiscoveryDocument{
		UCP: ucpInfo{
			Version:  protocolVersion,
			ShopID:   uuid.New().String(),
			Endpoint: endpoint,
			Capabilities: []string{
				"checkout",
				"order",
				"discount",
				"fulfillment",
				"buyer_consent",
			},
		},
		Payment: paymentProfile{
			Handlers: []paymentHandler{
				{Method: "upi", VPA: merchantVPA, Payee: merchantName},
			},
		},
		Merchant: merchantInfo{
			Name:       merchantName,
			Categories: categories,
		},
	}
}

func (h *Handler) GetDiscovery(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.discovery)
}
