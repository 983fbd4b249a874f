// Package server provides HTTP routing, middleware, and the bot's health endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Health Endpoint
//
// HealthHandler reports process liveness for deployment probes: uptime and
// the number of conversations currently holding a candidate list. The
// endpoint is optional and enabled through the [server] config section.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
