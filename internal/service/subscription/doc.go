// Package subscription implements the subscription intake pipeline.
//
// A request moves through Validating → Persisting and ends Rejected (client
// input failed validation), Failed (the store returned an error) or Accepted
// (one record was written). Nothing is retained between requests, so a single
// Service is shared by every handler goroutine.
//
// The service depends on the Repository interface defined in repository.go.
// It never imports net/http or database/sql directly.
package subscription
