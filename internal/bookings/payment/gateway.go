// Package payment is a mocked card capture. No money moves; it checks the
// card fields and issues a sealed receipt reference.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/pkg/logger"
	"rentmate/pkg/model"
	"rentmate/pkg/sealer"
)

type MockGateway struct {
	sealer *sealer.Sealer
	log    *logger.Logger
	now    func() time.Time
}

func NewMockGateway(s *sealer.Sealer, log *logger.Logger) *MockGateway {
	return &MockGateway{sealer: s, log: log, now: time.Now}
}

// Capture returns a receipt reference, or an error wrapping
// bookingerrors.ErrPaymentDeclined when the card is unusable.
func (g *MockGateway) Capture(ctx context.Context, d *model.PaymentDetails, amount float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d == nil {
		return "", fmt.Errorf("%w: missing card details", bookingerrors.ErrPaymentDeclined)
	}
	if reason := g.check(d); reason != "" {
		g.log.Info("Payment declined", "reason", reason)
		return "", fmt.Errorf("%w: %s", bookingerrors.ErrPaymentDeclined, reason)
	}

	now := g.now().UTC()
	last4 := d.CardNumber[len(d.CardNumber)-4:]
	ref, err := g.sealer.Seal(last4, strconv.FormatFloat(amount, 'f', 2, 64), now.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("failed to issue receipt: %w", err)
	}

	g.log.Info("Payment captured", "amount", amount, "card_last4", last4)
	return ref, nil
}

// Receipt opens a reference issued by Capture.
func (g *MockGateway) Receipt(ref string) (*model.PaymentReceipt, error) {
	parts, err := g.sealer.Open(ref)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, sealer.ErrInvalidToken
	}
	amount, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, sealer.ErrInvalidToken
	}
	capturedAt, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return nil, sealer.ErrInvalidToken
	}
	return &model.PaymentReceipt{CardLast4: parts[0], Amount: amount, CapturedAt: capturedAt}, nil
}

func (g *MockGateway) check(d *model.PaymentDetails) string {
	if len(d.CardNumber) != 16 || !allDigits(d.CardNumber) {
		return "card number must be 16 digits"
	}
	if len(d.CVV) != 3 || !allDigits(d.CVV) {
		return "cvv must be 3 digits"
	}
	if strings.TrimSpace(d.CardHolder) == "" {
		return "card holder is required"
	}
	month, year, ok := ParseExpiry(d.Expiry)
	if !ok {
		return "expiry must be MM/YY"
	}
	if Expired(month, year, g.now()) {
		return "card is expired"
	}
	return ""
}

// ParseExpiry reads an MM/YY expiry into a month and a four digit year.
func ParseExpiry(s string) (month, year int, ok bool) {
	if len(s) != 5 || s[2] != '/' || !allDigits(s[:2]) || !allDigits(s[3:]) {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(s[:2])
	year, _ = strconv.Atoi(s[3:])
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return month, 2000 + year, true
}

// Expired reports whether a card is past its last valid month at now.
func Expired(month, year int, now time.Time) bool {
	now = now.UTC()
	if year != now.Year() {
		return year < now.Year()
	}
	return month < int(now.Month())
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
