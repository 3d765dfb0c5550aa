// Package eval evaluates parsed rule trees against records.
//
// Evaluation is deterministic, short-circuiting and total: every walk
// yields a boolean. Error-like situations (missing attributes, non-numeric
// operands) resolve the affected condition to false and are reported only
// through logging and the optional diagnostic callback.
package eval
