package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mittal-parth/agentic-commerce/internal/domain"
)

// Signer computes and verifies request signatures over a session's
// frozen payload (id + total + buyer) with the merchant secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(session *domain.CheckoutSession) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d|%s", session.ID, session.TotalPaise, session.BuyerID)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(session *domain.CheckoutSession, signature string) error {
	expected := s.Sign(session)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrInvalidSignature
	}
	return nil
}
