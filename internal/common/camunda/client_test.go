package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "assessment-engine/internal/common/errors"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		RequestTimeout: time.Second,
		RetryConfig:    &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
	}}
}

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	c := testClient()
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "publish")

	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	c := testClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("deadline exceeded")
	}, "publish")

	assert.Equal(t, 3, calls)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeWorkflowUnavailable))
}

func TestExecuteWithRetry_PermanentError(t *testing.T) {
	c := testClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("invalid argument: message name empty")
	}, "publish")

	assert.Equal(t, 1, calls)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
}

func TestExecuteWithRetry_DuplicateMessageIsNotAnError(t *testing.T) {
	c := testClient()

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		return nil, errors.New("message with id 'abc' already exists")
	}, "publish")

	assert.NoError(t, err)
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := testClient()
	c.config.RetryConfig.BaseDelay = time.Second
	c.config.RetryConfig.MaxDelay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		return nil, errors.New("connection reset")
	}, "publish")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
