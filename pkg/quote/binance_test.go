package quote

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPingWithRetry_FirstAttemptSucceeds(t *testing.T) {
	calls := 0

	err := pingWithRetry(func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestPingWithRetry_RecoversMidway(t *testing.T) {
	calls := 0

	err := pingWithRetry(func() error {
		calls++
		if calls < 2 {
			return errors.New("unreachable")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestPingWithRetry_NoSleepAfterLastFailure(t *testing.T) {
	calls := 0
	start := time.Now()

	err := pingWithRetry(func() error {
		calls++
		return errors.New("unreachable")
	})

	require.Error(t, err)
	require.Equal(t, pingAttempts, calls)

	// Two backoff sleeps between three attempts total 300ms; a trailing
	// sleep after the last failure would push this past 700ms
	require.Less(t, time.Since(start), 600*time.Millisecond)
}
