// Package auth provides API key authentication for the rule API. Each
// accepted key maps to an owner; the middleware stores the authenticated
// key info on the request context for handlers to scope rule access.
package auth
