// Package broker implements the event-streaming transport on top of NATS
// JetStream: keyed partitioned topics, an asynchronous durable producer,
// consumer-group polling, per-topic handler routing and dead-letter routing.
//
// Mapping of streaming concepts onto JetStream:
//   - Topic: one stream named after the topic, with one subject per
//     partition ("<topic>.p.<n>"). Replication factor maps to stream
//     replicas, retention maps to the stream's max age.
//   - Partition: a subject of the stream. The producer places a message by
//     hashing its partition key, so messages sharing a key share a subject
//     and therefore keep their relative order.
//   - Consumer group: a durable pull consumer named after the group. Workers
//     sharing a group share the durable and split messages between them;
//     distinct groups consume the stream independently.
//   - Offset: the stream sequence of a message, committed by acking.
//
// Delivery is at-least-once. Offsets advance per message only after the
// router has either handled the message or routed it to a dead-letter topic,
// so a handler failure is never silently dropped.
package broker
