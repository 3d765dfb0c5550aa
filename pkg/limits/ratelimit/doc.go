// Package ratelimit provides token bucket rate limiting keyed by API key.
package ratelimit
