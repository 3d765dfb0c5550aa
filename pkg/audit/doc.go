// Package audit records an audit trail of rule evaluations: who evaluated
// what, against which record, and with what outcome. Events are persisted
// in SQLite and pruned on a cron schedule according to the configured
// retention.
package audit
