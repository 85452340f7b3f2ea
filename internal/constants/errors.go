package constants

import "errors"

// CLI errors.
var (
	ErrInvalidParam        = errors.New("query parameter must be in key=value form")
	ErrInvalidBody         = errors.New("request body must be a JSON object")
	ErrUnknownOutputFormat = errors.New("unknown output format")
	ErrUnknownCredStore    = errors.New("unknown credential store")
)

// File system errors.
var (
	ErrNotRegularFile = errors.New("path is not a regular file")
)
