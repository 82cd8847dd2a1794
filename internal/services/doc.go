// Package services defines the [Service] interface through which the CLI and the editor load and save setlists.
//
// # Implementations
//
// [LocalService] talks to the sqlite repositories directly and is what the HTTP server exposes.
//
// [APIService] talks to a running server over HTTP. Requests are paced by a [rate.Limiter] and bounded by
// the client timeout from the configuration.
//
// # Error Handling
//
// Both implementations return errors wrapping the shared sentinels:
//   - [shared.ErrSetlistNotFound] : unknown setlist id
//   - [shared.ErrInvalidInput] : payload rejected by validation
//   - [shared.ErrDuplicateSong] : song already in the catalog
//   - [shared.ErrServiceUnavailable] : the server could not be reached
//   - [shared.ErrMalformedResponse] : the server answered with something that does not decode
//   - [shared.ErrAPIRequest] : any other non-2xx response
package services
