package channel

import "fmt"

// ValidationError reports a payload missing required fields. It fails before
// any side effect and is never retried automatically.
type ValidationError struct {
	Channel string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("channel %s: payload missing required fields %v", e.Channel, e.Missing)
}

// AuthorizationError reports an action referencing a resource not owned by
// the requesting creator. It fails that single action only.
type AuthorizationError struct {
	Channel string
	Reason  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("channel %s: %s", e.Channel, e.Reason)
}

// ProviderError wraps a downstream gateway failure. The channel layer logs
// it and surfaces it unchanged; it does not retry gateway calls itself.
type ProviderError struct {
	Channel  string
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("channel %s: provider %s: %v", e.Channel, e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// UnknownChannelError reports an action naming a channel the registry does
// not recognize. Fatal for that action only, and non-retryable.
type UnknownChannelError struct {
	Channel string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("unknown channel %q", e.Channel)
}
