// Package payment starts payments for placed orders.
package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, order *models.Order) (Intent, error)
}

type Stripe struct {
	api      *client.API
	currency string
}

func NewStripe(secretKey, currency string) *Stripe {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Stripe{api: sc, currency: strings.ToLower(currency)}
}

func (s *Stripe) CreateIntent(ctx context.Context, order *models.Order) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(order.Total)),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ReceiptEmail: stripe.String(order.Email),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("user_id", order.UserID.String())

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe payment intent: %w", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// MinorUnits converts a decimal amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// WhatsAppLink builds the wa.me deep link a customer follows to confirm
// an order by chat.
func WhatsAppLink(number string, order *models.Order) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello, I would like to confirm my order %s.\n", order.ID)
	for _, it := range order.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s\n", it.ProductName, it.Quantity, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s\n", order.Total.StringFixed(2))
	fmt.Fprintf(&b, "Name: %s %s\nPhone: %s\n", order.FirstName, order.LastName, order.Phone)
	fmt.Fprintf(&b, "Address: %s, %s %s, %s", order.Address, order.PostalCode, order.City, order.Country)

	// wa.me reads the text percent-encoded, with %20 for spaces.
	text := strings.ReplaceAll(url.QueryEscape(b.String()), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}
