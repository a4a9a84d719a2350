package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/syndicate/syndicate"
)

func TestTask_Subject(t *testing.T) {
	task := Task{PackageID: "pkg-1", Topic: syndicate.TopicUpdate, ProfileID: "portal"}
	assert.Equal(t, "syndicate.task.portal", task.Subject())
}

func TestTask_EncodeDecodeRoundTrip(t *testing.T) {
	task := Task{
		PackageID:  "pkg-1",
		Topic:      syndicate.TopicCreate,
		ProfileID:  "portal",
		EnqueuedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := task.Encode()
	require.NoError(t, err)

	got, err := DecodeTask(data)
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestDecodeTask_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "not json"},
		{"missing package id", `{"topic":"dataset/update","profile_id":"portal"}`},
		{"missing profile id", `{"package_id":"pkg-1","topic":"dataset/update"}`},
		{"invalid topic", `{"package_id":"pkg-1","topic":"dataset/rename","profile_id":"portal"}`},
		{"empty topic", `{"package_id":"pkg-1","profile_id":"portal"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTask([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
