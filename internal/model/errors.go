package model

import "errors"

var (
	// ErrInvalidConfiguration means an indicator period is non-positive or exceeds the data.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInsufficientData means the range produced fewer bars than the computation needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDataUnavailable means the market data provider could not be reached in time. Retryable.
	ErrDataUnavailable = errors.New("data unavailable")
)
