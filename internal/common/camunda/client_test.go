package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "citation-intelligence/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(fmt.Errorf("rpc error: code = Unavailable")))
	assert.True(t, isRetryableZeebeError(fmt.Errorf("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(fmt.Errorf("job not found")))
}

func TestSendCommand_RecoversFromTransientError(t *testing.T) {
	c := testClient()
	calls := 0

	err := c.SendCommand("complete job", func(context.Context) error {
		calls++
		if calls < 2 {
			return fmt.Errorf("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSendCommand_MapsPermanentError(t *testing.T) {
	c := testClient()
	calls := 0

	err := c.SendCommand("throw error", func(context.Context) error {
		calls++
		return fmt.Errorf("job not found")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeResourceNotFound, stdErr.Code)
}

func TestSendCommand_GivesUpAfterMaxRetries(t *testing.T) {
	c := testClient()
	calls := 0

	err := c.SendCommand("fail job", func(context.Context) error {
		calls++
		return fmt.Errorf("deadline exceeded")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeTimeout, stdErr.Code)
}

func TestSendCommand_EachAttemptGetsItsOwnDeadline(t *testing.T) {
	c := testClient()
	c.config.RequestTimeout = 50 * time.Millisecond
	var deadlines []time.Time

	err := c.SendCommand("fail job", func(ctx context.Context) error {
		require.NoError(t, ctx.Err())
		d, ok := ctx.Deadline()
		require.True(t, ok)
		deadlines = append(deadlines, d)
		if len(deadlines) < 2 {
			return fmt.Errorf("unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	require.Len(t, deadlines, 2)
	assert.True(t, deadlines[1].After(deadlines[0]))
}

func TestSendCommand_DefaultsWithoutConfig(t *testing.T) {
	c := &Client{config: &ClientConfig{}}

	err := c.SendCommand("complete job", func(ctx context.Context) error {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(apperrors.CommandTimeout), d, time.Second)
		return nil
	})

	require.NoError(t, err)
}
