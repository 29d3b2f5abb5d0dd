// Package httputil provides shared HTTP response helpers for handlers.
//
// Handlers use these instead of raw http.ResponseWriter calls so that JSON
// formatting, error envelopes and server-side logging stay consistent.
package httputil
