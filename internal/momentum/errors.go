package momentum

import "errors"

var (
	// ErrInvalidDeceleration indicates a deceleration magnitude that is not a positive finite number.
	ErrInvalidDeceleration = errors.New("momentum: deceleration must be positive and finite")

	// ErrInvalidSign indicates a direction that is zero or NaN.
	ErrInvalidSign = errors.New("momentum: sign must be +1 or -1")
)
