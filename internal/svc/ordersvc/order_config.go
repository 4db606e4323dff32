package ordersvc

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidOrderConfig is returned by OrderConfig.Validate.
var ErrInvalidOrderConfig = errors.New("invalid order config")

// OrderConfig contains configuration parameters for checkout and order queries.
type OrderConfig struct {
	// MaxPageSize caps the page size of order listings
	MaxPageSize int `env:"MAX_PAGE_SIZE" default:"100"`

	// CheckoutTimeout bounds a checkout including its retries; on expiry the transaction is rolled back
	CheckoutTimeout time.Duration `env:"CHECKOUT_TIMEOUT" default:"10s"`

	// CheckoutRetries is how often a checkout that lost a storage race is attempted again
	CheckoutRetries int `env:"CHECKOUT_RETRIES" default:"3"`
}

// Validate implements config.Validator.
func (c OrderConfig) Validate() error {
	switch {
	case c.MaxPageSize < 1:
		return errors.Join(ErrInvalidOrderConfig, errors.New("max page size must be at least 1"))
	case c.CheckoutTimeout <= 0:
		return errors.Join(ErrInvalidOrderConfig, errors.New("checkout timeout must be positive"))
	case c.CheckoutRetries < 0:
		return errors.Join(ErrInvalidOrderConfig, errors.New("checkout retries must not be negative"))
	}

	return nil
}

// TxRunner runs a function in a storage transaction carried by the context it is passed.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
