/*
Package eventpipe is an event streaming backbone for creator platforms. It
routes consumer events through agent decisions into channel actions over a
JetStream broker, with Kafka-style topics, partitions and consumer groups
layered on top.

The module is organized around a small set of packages:

  - messages: the envelopes flowing through the pipeline (events,
    invocations, actions, dead letters)
  - broker: topics, partitioning, producer, consumer groups, dead-letter
    routing and per-message dispatch
  - channel: the action execution tools (email, chat, call, payment,
    publish) behind a static registry
  - gateway: provider capability interfaces with interchangeable fakes
  - worker: the long-running consumer loops
  - cmd/eventpipe: the worker binaries

# Message flow

An event enters on the events topic, partitioned by its idempotency key. The
agent processor hands it to the orchestrator, which plans invocations and
actions; planned actions land on the actions topic and the action executor
dispatches each one through its channel tool. A handler failure routes the
message to the matching dead-letter topic and the offset is committed, so one
poisoned message never stalls a partition.

# Running workers

	eventpipe provision
	eventpipe agent-processor
	eventpipe action-executor
	eventpipe batch-consumer

Each worker owns one consumer group and shuts down cleanly on SIGINT or
SIGTERM, flushing the producer before the connection drops.
*/
package eventpipe
