// Package server exposes the club100 timeline builder over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recovery] are the two middlewares installed by [NewRouter].
//
// The [BasicRouter] implementation uses [http.ServeMux] internally and dispatches on method per path,
// answering unknown methods with a JSON 405.
//
// # Routes
//
//	POST /api/youtube-search  {"query": "..."}           -> [] songs, 400 {"error":"Missing query"},
//	                                                        500 {"error":"All search methods failed"}
//	POST /api/import          {"lines": [...]} or {"text": "..."}
//	                                                     -> {"appendedSongs", "found", "notFound"}
//	GET  /api/timeline                                   -> [] timeline items
//	GET  /health                                         -> {"status":"ok"}
//
// An empty search result is a success, not an error.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// [HealthHandler] is registered this way.
package server
