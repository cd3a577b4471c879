// Package messages defines the wire envelopes that travel through the event
// pipeline: consumer events, agent invocations, planned actions and
// dead-letter records.
//
// Design decisions:
//   - Flat JSON objects: every envelope is a fixed field set, no nesting of
//     transport concerns into the logical payload
//   - Identity first: creator/consumer/event identifiers are required and
//     validated before a message is handed to any handler
//   - Out-of-band metadata: topic, partition and offset never appear in the
//     envelope itself; the broker package attaches them separately
//   - goccy/go-json codec throughout for encode/decode symmetry
//
// Envelope lineage: an Event triggers zero or more AgentInvocations, each of
// which plans zero or more Actions. A message that exhausts its retry budget
// is wrapped in a DeadLetter together with the failure context.
package messages
