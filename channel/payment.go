package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/creatorhq/eventpipe/gateway"
	"github.com/creatorhq/eventpipe/pkg/slogx"
)

// paymentTool builds a payment reference for a catalog product. Ownership is
// a hard authorization invariant: the referenced product must belong to the
// requesting creator, checked on every call, never cached.
type paymentTool struct {
	products gateway.Products
	baseURL  string
	log      *slog.Logger
}

// NewPayment creates the payment channel tool. baseURL is the public prefix
// payment links are rendered under.
func NewPayment(products gateway.Products, baseURL string, log *slog.Logger) Tool {
	if log == nil {
		log = slog.Default()
	}
	if baseURL == "" {
		baseURL = "https://pay.creatorhq.dev"
	}
	return &paymentTool{products: products, baseURL: baseURL, log: log}
}

func (t *paymentTool) Name() string { return Payment }

func (t *paymentTool) Validate(payload Payload) bool {
	return len(missing(payload, "product_id")) == 0
}

func (t *paymentTool) Execute(ctx context.Context, creatorID, consumerID uuid.UUID, payload Payload) (Result, error) {
	if fields := missing(payload, "product_id"); len(fields) > 0 {
		return nil, &ValidationError{Channel: Payment, Missing: fields}
	}

	productID, err := uuid.Parse(stringField(payload, "product_id"))
	if err != nil {
		return nil, &ValidationError{Channel: Payment, Missing: []string{"product_id"}}
	}

	product, err := t.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, gateway.ErrProductNotFound) {
			return nil, &AuthorizationError{Channel: Payment, Reason: fmt.Sprintf("product %s not found", productID)}
		}
		return nil, &ProviderError{Channel: Payment, Provider: "products", Err: err}
	}

	if product.CreatorID != creatorID {
		t.log.WarnContext(ctx, "payment for foreign product rejected",
			slogx.UUID("creator_id", creatorID),
			slogx.UUID("product_id", productID))
		return nil, &AuthorizationError{Channel: Payment, Reason: "product does not belong to creator"}
	}

	amountCents := product.PriceCents
	if custom, ok := payload["amount_cents"]; ok {
		switch v := custom.(type) {
		case float64: // JSON numbers decode as float64
			amountCents = int64(v)
		case int64:
			amountCents = v
		case int:
			amountCents = int64(v)
		}
	}

	link := fmt.Sprintf("%s/pay/%s/%s/%s?amount=%d",
		t.baseURL, creatorID, productID, consumerID, amountCents)

	t.log.InfoContext(ctx, "generated payment link",
		slogx.UUID("product_id", productID),
		slogx.UUID("creator_id", creatorID),
		slogx.UUID("consumer_id", consumerID))

	return Result{
		"success":      true,
		"payment_link": link,
		"product_id":   productID.String(),
		"product_name": product.Name,
		"amount_cents": amountCents,
		"currency":     product.Currency,
	}, nil
}
