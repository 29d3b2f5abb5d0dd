package subscription

import "errors"

// ErrStore wraps any error returned by the Repository.
var ErrStore = errors.New("subscriber store error")
