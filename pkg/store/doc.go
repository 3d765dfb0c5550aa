// Package store persists rule strings per owner.
//
// Two backends implement the same interface: an in-memory map for tests
// and ephemeral deployments, and SQLite for durable single-instance
// deployments. Rules are stored as written; parsing happens at evaluation
// time.
package store
