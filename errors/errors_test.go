package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_Format(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(base, "Reconciler", "syncCreate", "create remote dataset")

	assert.EqualError(t, err, "Reconciler.syncCreate: create remote dataset failed: boom")
	assert.True(t, errors.Is(err, base))
	assert.Nil(t, Wrap(nil, "c", "m", "a"))
}

func TestClassifiedWrappers(t *testing.T) {
	base := errors.New("boom")

	assert.True(t, IsTransient(WrapTransient(base, "c", "m", "a")))
	assert.True(t, IsFatal(WrapFatal(base, "c", "m", "a")))
	assert.True(t, IsInvalid(WrapInvalid(base, "c", "m", "a")))

	assert.Nil(t, WrapTransient(nil, "c", "m", "a"))
	assert.Nil(t, WrapFatal(nil, "c", "m", "a"))
	assert.Nil(t, WrapInvalid(nil, "c", "m", "a"))
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	err := WrapTransient(errors.New("boom"), "c", "m", "a")
	wrapped := fmt.Errorf("outer context: %w", err)

	assert.True(t, IsTransient(wrapped))
	assert.Equal(t, ErrorTransient, Classify(wrapped))
}

func TestIsTransient_Sentinels(t *testing.T) {
	assert.True(t, IsTransient(ErrRemoteUnavailable))
	assert.True(t, IsTransient(ErrConnectionTimeout))
	assert.True(t, IsTransient(ErrQueueUnavailable))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(ErrRemoteNotFound))
}

func TestIsTransient_TransportPatterns(t *testing.T) {
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(errors.New("request timeout exceeded")))
	assert.False(t, IsTransient(errors.New("record does not exist")))
}

func TestIsInvalid_Sentinels(t *testing.T) {
	assert.True(t, IsInvalid(ErrRemoteValidation))
	assert.True(t, IsInvalid(ErrNameConflict))
	assert.False(t, IsInvalid(ErrRemoteUnavailable))
}

func TestIsFatal_Sentinels(t *testing.T) {
	assert.True(t, IsFatal(ErrInvalidConfig))
	assert.True(t, IsFatal(ErrMissingConfig))
	assert.False(t, IsFatal(ErrRemoteNotFound))
}

func TestClassify_DefaultsToTransient(t *testing.T) {
	assert.Equal(t, ErrorTransient, Classify(errors.New("unknown failure")))
	assert.Equal(t, ErrorInvalid, Classify(WrapInvalid(errors.New("bad"), "c", "m", "a")))
	assert.Equal(t, ErrorFatal, Classify(WrapFatal(errors.New("bad"), "c", "m", "a")))
}

func TestErrorClass_String(t *testing.T) {
	assert.Equal(t, "transient", ErrorTransient.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(42).String())
}

func TestRetryConfig_ShouldRetry(t *testing.T) {
	cfg := DefaultRetryConfig()

	assert.True(t, cfg.ShouldRetry(ErrRemoteUnavailable, 1))
	assert.False(t, cfg.ShouldRetry(ErrRemoteUnavailable, cfg.MaxRetries))
	assert.False(t, cfg.ShouldRetry(WrapInvalid(errors.New("bad"), "c", "m", "a"), 1))
	assert.False(t, cfg.ShouldRetry(nil, 0))
}

func TestRetryConfig_ToRetryConfig(t *testing.T) {
	rc := DefaultRetryConfig().ToRetryConfig()
	assert.Equal(t, DefaultRetryConfig().MaxRetries+1, rc.MaxAttempts)
	assert.True(t, rc.AddJitter)
}
