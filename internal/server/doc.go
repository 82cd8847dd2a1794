// Package server exposes setlist persistence over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements it on a chi mux.
//
// [Middleware] has the standard func(http.Handler) http.Handler shape; the first middleware added is the outermost.
// [RequestID], [Logger], and [Recovery] are installed by [NewRouter].
//
// # Endpoints
//
// [SetlistHandler] serves:
//   - GET  /health
//   - GET  /api/setlists, POST /api/setlists
//   - GET  /api/setlists/{id} : setlist, catalog, and sets
//   - PUT  /api/setlists/{id}/sets : replace the sets; answers with the stored sets
//   - GET  /api/songs, POST /api/songs
//
// Set ids the server does not already know for the setlist are replaced with generated ids in the response.
// Errors are JSON bodies of the form {"error": "..."}.
package server
