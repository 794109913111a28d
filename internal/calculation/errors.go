package calculation

import "errors"

var (
	// ErrInvalidRateTable is returned for empty or non-finite rate tables.
	ErrInvalidRateTable = errors.New("invalid rate table")
	// ErrInvalidConfiguration covers malformed or missing engine configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrDegenerateInput marks a division by a zero aggregate (working-age
	// population, subscribers, expenditure). It signals bad input data.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrNotPositiveDefinite is returned when the covariance matrix cannot be factorised.
	ErrNotPositiveDefinite = errors.New("covariance matrix is not positive definite")
)
