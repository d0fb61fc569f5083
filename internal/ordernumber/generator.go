// Package ordernumber issues the short human-facing order identifiers
// customers quote in emails and invoices.
package ordernumber

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	Prefix             = "RV"
	Length             = 10
	DefaultMaxAttempts = 10
	DefaultRetryDelay  = 10 * time.Millisecond
)

// Unambiguous upper-case alphabet: no 0/O, 1/I.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	ErrOrderNumberExhausted = errors.New("order number exhausted")
	errCollision            = errors.New("order number collision")
)

// ExistsFunc reports whether a candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

type Generator struct {
	maxAttempts int
	delay       time.Duration
	next        func() (string, error)
}

type Option func(*Generator)

func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.delay = d
		}
	}
}

// WithSource replaces the random candidate source.
func WithSource(next func() (string, error)) Option {
	return func(g *Generator) {
		if next != nil {
			g.next = next
		}
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		maxAttempts: DefaultMaxAttempts,
		delay:       DefaultRetryDelay,
		next:        Random,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Random returns a fresh candidate such as "RV7KQ2MZ9D".
func Random() (string, error) {
	buf := make([]byte, Length-len(Prefix))
	limit := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return Prefix + string(buf), nil
}

// Unique draws candidates until exists reports one as free. It gives up with
// ErrOrderNumberExhausted after the configured number of attempts. An error
// from exists is returned as is, without further attempts.
//
// Uniqueness is best effort: two callers may both see a number as free.
// The orders.order_number unique constraint settles that race.
func (g *Generator) Unique(ctx context.Context, exists ExistsFunc) (string, error) {
	backoff := retry.WithMaxRetries(uint64(g.maxAttempts-1), retry.NewConstant(g.delay))

	var number string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := g.next()
		if err != nil {
			return err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return fmt.Errorf("check order number %s: %w", candidate, err)
		}
		if taken {
			return retry.RetryableError(errCollision)
		}
		number = candidate
		return nil
	})
	if errors.Is(err, errCollision) {
		return "", fmt.Errorf("%w after %d attempts", ErrOrderNumberExhausted, g.maxAttempts)
	}
	if err != nil {
		return "", err
	}
	return number, nil
}
