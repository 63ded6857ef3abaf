package domain

import "errors"

var (
	// ErrInvalidOrder is returned when an order is constructed with a
	// non-positive price or quantity. Never recoverable: it indicates caller
	// misuse, not a runtime data condition.
	ErrInvalidOrder = errors.New("order price and quantity must be positive")

	// ErrNoLiquidity is returned when a fill is attempted against an empty
	// book side. This is an expected condition: the arbitrage loop uses it as
	// its termination signal, not as a failure.
	ErrNoLiquidity = errors.New("no liquidity available")

	// ErrEmptyBook is returned by queries that need both sides of the book
	// (e.g. mid price) when one side has no resting orders.
	ErrEmptyBook = errors.New("book side is empty")

	// ErrUnknownSide flags an order side outside the Buy/Sell enumeration.
	ErrUnknownSide = errors.New("order side not recognized")
)

// ConfigError represents an invalid simulation configuration value.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether an error is an expected control-flow signal
// rather than a failure. Book exhaustion is the only recoverable case.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrNoLiquidity)
}
