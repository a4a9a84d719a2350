// Package queue carries reconciliation work from the dispatch trigger to the
// worker over a JetStream work-queue stream. Delivery is at-least-once with
// no ordering guarantee; the reconciliation engine is written to converge
// under duplicates and reordering.
package queue

import (
	"encoding/json"
	"time"

	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/syndicate"
)

// Stream and subject layout for reconciliation tasks. One subject per
// profile keeps profiles structurally isolated on the queue.
const (
	StreamName     = "SYNDICATE_TASKS"
	SubjectPrefix  = "syndicate.task."
	SubjectPattern = "syndicate.task.>"
)

// Task is one unit of reconciliation work. It deliberately carries only the
// profile id, not the profile: the worker re-resolves the profile from the
// store at execution time, the same way the engine reloads the dataset, so
// stale snapshots never drive a sync.
type Task struct {
	PackageID  string          `json:"package_id"`
	Topic      syndicate.Topic `json:"topic"`
	ProfileID  string          `json:"profile_id"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Subject returns the task's queue subject.
func (t Task) Subject() string {
	return SubjectPrefix + t.ProfileID
}

// Encode serializes the task for the wire.
func (t Task) Encode() ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Task", "Encode", "marshal task")
	}
	return data, nil
}

// DecodeTask deserializes a task from the wire.
func DecodeTask(data []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return Task{}, errors.WrapInvalid(err, "Task", "DecodeTask", "unmarshal task")
	}
	if t.PackageID == "" || t.ProfileID == "" || !t.Topic.Valid() {
		return Task{}, errors.WrapInvalid(
			errors.ErrInvalidConfig, "Task", "DecodeTask", "validate task fields")
	}
	return t, nil
}
