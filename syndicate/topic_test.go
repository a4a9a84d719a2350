package syndicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicForOperation(t *testing.T) {
	tests := []struct {
		operation string
		want      Topic
	}{
		{OperationNew, TopicCreate},
		{OperationChanged, TopicUpdate},
		{OperationDeleted, TopicDelete},
		{"purged", TopicNone},
		{"", TopicNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TopicForOperation(tt.operation), "operation %q", tt.operation)
	}
}

func TestTopicValid(t *testing.T) {
	assert.True(t, TopicCreate.Valid())
	assert.True(t, TopicUpdate.Valid())
	assert.True(t, TopicDelete.Valid())
	assert.False(t, TopicNone.Valid())
	assert.False(t, Topic("dataset/rename").Valid())
}
