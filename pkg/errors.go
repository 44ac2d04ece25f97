package warmer

import "errors"

var (
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrDeviceUnstattable  = errors.New("device could not be opened or sized")
	ErrEngineUnstartable  = errors.New("submission engine could not be started")
	ErrNoRoots            = errors.New("at least one directory is required")
	ErrNoDevice           = errors.New("device path is required")
	ErrUnsupportedBackend = errors.New("backend not supported on this platform")
)
