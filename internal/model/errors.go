package model

import "errors"

var (
	errAutoRefillNeedsInitialAmount = errors.New("model: auto_refill requires initial_amount > 0")
	errTokenSideRequired            = errors.New("model: deposit/withdraw workers require a token side")
)
