// Package gateway declares the external capability interfaces the channel
// tools depend on: mail, chat, call scheduling and product lookup. Real
// adapters wrap provider SDKs; the fakes in this package are drop-in
// replacements for tests and local wiring, so the channel contract never
// changes between environments.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned by Products.Get when no product exists for
// the given identifier.
var ErrProductNotFound = errors.New("gateway: product not found")

// Mail sends transactional email through a provider and returns the provider
// message id.
type Mail interface {
	Send(ctx context.Context, to, subject, body, from string) (string, error)
}

// Chat sends a chat/WhatsApp-style message through a provider. Template is
// optional and provider specific.
type Chat interface {
	Send(ctx context.Context, to, message, template string) (string, error)
}

// Calls schedules a call with a consumer and returns a scheduling
// confirmation reference.
type Calls interface {
	Schedule(ctx context.Context, phone string, at string, kind string) (string, error)
}

// Product is the subset of catalog data the payment channel needs.
type Product struct {
	ID         uuid.UUID
	CreatorID  uuid.UUID
	Name       string
	PriceCents int64
	Currency   string
}

// Products looks up catalog products for payment reference generation.
type Products interface {
	Get(ctx context.Context, id uuid.UUID) (Product, error)
}

// Clock supplies wall-clock time. Timestamps on outgoing records are always
// captured through a Clock so tests can pin them.
type Clock func() time.Time

// SystemClock is the default Clock.
func SystemClock() time.Time { return time.Now().UTC() }
