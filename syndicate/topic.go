// Package syndicate implements the syndication core: the skip decision, the
// outbound package transform, organization replication, the sync-state
// recorder, and the reconciliation engine that decides between creating,
// updating, and adopting remote records.
package syndicate

// Topic is the kind of local lifecycle event driving a sync attempt.
type Topic string

const (
	// TopicNone marks an unrecognized operation. It produces no work.
	TopicNone Topic = ""
	// TopicCreate is emitted when a local dataset is created.
	TopicCreate Topic = "dataset/create"
	// TopicUpdate is emitted when a local dataset changes.
	TopicUpdate Topic = "dataset/update"
	// TopicDelete is emitted when a local dataset is deleted. It only
	// produces work for profiles with PropagateDeletions enabled.
	TopicDelete Topic = "dataset/delete"
)

// Operation names as delivered by the host application's notification hook.
const (
	OperationNew     = "new"
	OperationChanged = "changed"
	OperationDeleted = "deleted"
)

// TopicForOperation maps a notification operation onto a Topic. Unrecognized
// operations map to TopicNone.
func TopicForOperation(operation string) Topic {
	switch operation {
	case OperationNew:
		return TopicCreate
	case OperationChanged:
		return TopicUpdate
	case OperationDeleted:
		return TopicDelete
	default:
		return TopicNone
	}
}

// Valid reports whether the topic is one of the recognized lifecycle topics.
func (t Topic) Valid() bool {
	switch t {
	case TopicCreate, TopicUpdate, TopicDelete:
		return true
	default:
		return false
	}
}
