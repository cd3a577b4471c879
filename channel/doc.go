// Package channel implements the polymorphic execution layer for planned
// actions. Every delivery mechanism (email, chat, call scheduling, payment
// references, generic re-publish) satisfies the same Tool contract:
//
//	Validate(payload) bool               // pure, no side effects
//	Execute(ctx, creator, consumer, payload) (Result, error)
//
// Execute re-runs Validate before doing anything observable, even though
// callers are expected to have validated already: a payload that fails its
// own validation must never produce a side effect. The Registry is the
// single dispatch point; it is constructed once with every variant wired
// statically and rejects unrecognized channel identifiers with a
// non-retryable error.
package channel
