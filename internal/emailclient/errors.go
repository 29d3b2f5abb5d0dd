package emailclient

import "errors"

// Sentinel errors for the email client.
var (
	ErrDispatch           = errors.New("email dispatch failed")
	ErrHeaderConstruction = errors.New("email client: cannot build request headers")
)
