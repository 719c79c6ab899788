// Package upi generates UPI deep links and QR codes for checkout
// sessions.
package upi

import (
	"encoding/base64"
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// PaymentLink builds a upi://pay deep link. The amount is rendered in
// rupees with exactly two decimals; the session id rides in tr so the
// transfer can be reconciled against the checkout session.
func PaymentLink(vpa, payeeName string, amountPaise int64, sessionID string) string {
	rupees := amountPaise / 100
	paise := amountPaise % 100
	am := fmt.Sprintf("%d.%02d", rupees, paise)
	pn := url.QueryEscape(payeeName)
	tn := url.QueryEscape(fmt.Sprintf("Order_%s", sessionID))
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&tr=%s&cu=INR&tn=%s",
		vpa, pn, am, sessionID, tn)
}

// QRBase64 renders link as a PNG QR code, base64-encoded without a data
// URL prefix.
func QRBase64(link string) (string, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
