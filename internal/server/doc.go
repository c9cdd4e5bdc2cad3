// Package server hosts the Fiber shell: the middleware chain, the Site built
// from config that maps shell paths onto the asset origin, and the shared
// upstream HTTP client. Every path outside /-/ is handed to a ProxyHandler
// (the asset cache worker adapter); /-/ paths fall through to the JSON API
// registered by the routes package. Keep exports narrow and accept explicit
// dependencies so tests can inject fakes.
package server
