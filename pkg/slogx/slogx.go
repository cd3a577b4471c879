package slogx

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Error returns a slog.Attr representing the provided error.
// The attribute key is "error" and the value is the error's message.
//
// Parameters:
//   - err: The error to be converted into a slog.Attr.
//
// Returns:
//   - slog.Attr: An attribute with the key "error" and the error's message as the value.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// ByteString creates a slog.Attr with the given key and a string representation of the byte slice value.
// It converts the byte slice to a string and uses slog.String to create the attribute.
func ByteString(key string, value []byte) slog.Attr {
	return slog.String(key, string(value))
}

// Stringer creates a slog.Attr with the provided key and the string representation
// of the given fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// UUID creates a slog.Attr with the provided key and the canonical string form
// of the given UUID. A nil UUID renders as the empty string so that optional
// identifiers do not pollute log lines with zero values.
func UUID(key string, id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.String(key, "")
	}
	return slog.String(key, id.String())
}

// Correlation attribute helpers. Every log line emitted while a message moves
// through the pipeline carries these so a single event can be traced across
// topics, workers and channel executions.

// Topic returns the topic correlation attribute.
func Topic(name string) slog.Attr { return slog.String("topic", name) }

// Group returns the consumer-group correlation attribute.
func Group(id string) slog.Attr { return slog.String("group", id) }

// Partition returns the partition correlation attribute.
func Partition(p int) slog.Attr { return slog.Int("partition", p) }

// Offset returns the offset correlation attribute.
func Offset(o uint64) slog.Attr { return slog.Uint64("offset", o) }
