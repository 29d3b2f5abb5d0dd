// Package emailclient sends transactional email through the provider's HTTP
// API.
//
// One Send is exactly one POST: there is no retry, backoff or batching. Every
// failure mode (network error, timeout, non-2xx status) is reported as
// ErrDispatch. A credential that cannot be placed in an HTTP header is a
// configuration defect and is reported as ErrHeaderConstruction before any
// network I/O happens.
package emailclient
