package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/creatorhq/eventpipe/pkg/uuidx"
)

// SentMail records one delivered fake email.
type SentMail struct {
	To, Subject, Body, From string
}

// FakeMail is an in-memory Mail adapter. Set Err to make every send fail.
type FakeMail struct {
	mu   sync.Mutex
	Err  error
	Sent []SentMail
}

func (f *FakeMail) Send(ctx context.Context, to, subject, body, from string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Sent = append(f.Sent, SentMail{To: to, Subject: subject, Body: body, From: from})
	return fmt.Sprintf("mail-%s", uuidx.NewString()), nil
}

// SentChat records one delivered fake chat message.
type SentChat struct {
	To, Message, Template string
}

// FakeChat is an in-memory Chat adapter. Set Err to make every send fail.
type FakeChat struct {
	mu   sync.Mutex
	Err  error
	Sent []SentChat
}

func (f *FakeChat) Send(ctx context.Context, to, message, template string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Sent = append(f.Sent, SentChat{To: to, Message: message, Template: template})
	return fmt.Sprintf("chat-%s", uuidx.NewString()), nil
}

// ScheduledCall records one fake call scheduling request.
type ScheduledCall struct {
	Phone, At, Kind string
}

// FakeCalls is an in-memory Calls adapter. Set Err to make scheduling fail.
type FakeCalls struct {
	mu        sync.Mutex
	Err       error
	Scheduled []ScheduledCall
}

func (f *FakeCalls) Schedule(ctx context.Context, phone, at, kind string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Scheduled = append(f.Scheduled, ScheduledCall{Phone: phone, At: at, Kind: kind})
	return fmt.Sprintf("call-%s", uuidx.NewString()), nil
}

// FakeProducts is an in-memory Products catalog.
type FakeProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]Product
}

// NewFakeProducts builds a catalog preloaded with the given products.
func NewFakeProducts(products ...Product) *FakeProducts {
	byID := make(map[uuid.UUID]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &FakeProducts{products: byID}
}

func (f *FakeProducts) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

// Add inserts or replaces a product in the catalog.
func (f *FakeProducts) Add(p Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}
