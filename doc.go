// Package syndicate replicates dataset metadata from a local data catalog to
// one or more remote catalogs over their action APIs.
//
// # Architecture
//
// The pipeline has three stages:
//
//   - Dispatch: dataset change notifications from the host catalog are
//     matched against the configured profiles; eligible (dataset, profile)
//     pairs become tasks on a NATS JetStream work queue.
//   - Queue: tasks carry only identifiers. Delivery is at-least-once with no
//     ordering guarantee; failed tasks are redelivered up to a bound.
//   - Reconciliation: a worker loads the live dataset, verifies remote
//     state, and creates, updates, adopts, or deletes the remote record.
//
// Reconciliation is written to converge under duplicate and reordered
// deliveries: it always reloads local state, treats a recorded remote id
// whose record no longer exists as a stale mapping to recreate, and resolves
// name collisions by adopting remote records only when they were created by
// the profile's configured author.
//
// Package layout:
//
//   - catalog: dataset shapes and the local catalog contract
//   - profile: syndication targets and their policies
//   - remote: action-API client with typed error outcomes
//   - syndicate: skip rules, payload transform, reconciliation engine
//   - dispatch, queue: notification fan-out and JetStream task plumbing
//   - audit, metric, health: operational surfaces
package syndicate
