package domain

import (
	"errors"
)

var (
	MessageFailedBodyRequest  = "failed to parse request body"
	MessageFailedTokenInvalid = "failed to token invalid"
	MessageSuccessPing        = "pong"

	ErrParseUUID     = errors.New("failed to parse UUID")
	ErrTokenNotFound = errors.New("failed to token not found")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
)

// ClientError marks errors caused by the request rather than by a downstream
// dependency. Handlers answer these with 400.
type ClientError interface {
	error
	ClientError() bool
}

type clientError struct{ msg string }

func (e clientError) Error() string     { return e.msg }
func (e clientError) ClientError() bool { return true }

func NewClientError(msg string) error {
	return clientError{msg: msg}
}

func IsClientError(err error) bool {
	var ce ClientError
	return errors.As(err, &ce) && ce.ClientError()
}
