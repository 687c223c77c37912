// Package messaging publishes and consumes byte payloads over a pluggable
// broker: NATS, Kafka, NSQ, Google Pub/Sub, or an in-process broker used in
// tests and single-node runs.
//
// Subscribe blocks until its context ends. A handler returning nil
// acknowledges the message; an error asks the broker to redeliver where the
// broker supports it.
package messaging
