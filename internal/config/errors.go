package config

import "errors"

// ErrInvalidConfig wraps every validation failure; ErrLoadConfig wraps file
// and environment read failures.
var (
	ErrInvalidConfig = errors.New("invalid intervue config")
	ErrLoadConfig    = errors.New("cannot load intervue config")
)
