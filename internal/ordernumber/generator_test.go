package ordernumber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("RV%08d", n), nil
	}
}

func TestRandom_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		n, err := Random()
		require.NoError(t, err)
		assert.Len(t, n, Length)
		assert.True(t, strings.HasPrefix(n, Prefix))
		for _, r := range n[len(Prefix):] {
			assert.Contains(t, alphabet, string(r))
		}
	}
}

func TestUnique_ReturnsTenthCandidate(t *testing.T) {
	g := New(WithSource(sequence()), WithRetryDelay(time.Millisecond))

	calls := 0
	number, err := g.Unique(context.Background(), func(ctx context.Context, candidate string) (bool, error) {
		calls++
		return calls < 10, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 10, calls)
	assert.Equal(t, "RV00000010", number)
}

func TestUnique_ExhaustedAfterTenAttempts(t *testing.T) {
	g := New(WithSource(sequence()), WithRetryDelay(time.Millisecond))

	calls := 0
	_, err := g.Unique(context.Background(), func(ctx context.Context, candidate string) (bool, error) {
		calls++
		return true, nil
	})

	assert.ErrorIs(t, err, ErrOrderNumberExhausted)
	assert.Equal(t, 10, calls)
}

func TestUnique_FirstFreeCandidate(t *testing.T) {
	g := New(WithSource(sequence()))

	number, err := g.Unique(context.Background(), func(ctx context.Context, candidate string) (bool, error) {
		return false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "RV00000001", number)
}

func TestUnique_CheckErrorAborts(t *testing.T) {
	g := New(WithSource(sequence()), WithRetryDelay(time.Millisecond))
	boom := errors.New("connection reset")

	calls := 0
	_, err := g.Unique(context.Background(), func(ctx context.Context, candidate string) (bool, error) {
		calls++
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrOrderNumberExhausted)
	assert.Equal(t, 1, calls)
}

func TestUnique_CustomAttempts(t *testing.T) {
	g := New(WithSource(sequence()), WithMaxAttempts(3), WithRetryDelay(time.Millisecond))

	calls := 0
	_, err := g.Unique(context.Background(), func(ctx context.Context, candidate string) (bool, error) {
		calls++
		return true, nil
	})

	assert.ErrorIs(t, err, ErrOrderNumberExhausted)
	assert.Equal(t, 3, calls)
}
