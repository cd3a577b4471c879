package broker

import "fmt"

// TransportError signals a broker-level failure: a publish that exhausted its
// retry budget, a poll that could not reach the broker, or stream
// provisioning going wrong. Publish paths surface it as delivered=false;
// poll paths return it so the owning loop can back off and retry.
type TransportError struct {
	Op    string
	Topic string
	Err   error
}

func (e *TransportError) Error() string {
	if e.Topic == "" {
		return fmt.Sprintf("broker %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("broker %s %s: %v", e.Op, e.Topic, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
