package contract

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnknownTool  = errors.New("unknown tool")
	ErrBadArguments = errors.New("bad tool arguments")
	ErrRunFailed    = errors.New("run failed")
	ErrRunTimeout   = errors.New("run timed out")
)
