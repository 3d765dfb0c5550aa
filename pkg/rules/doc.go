// Package rules loads rule sets from a YAML rules file and keeps them in
// sync with a storage backend. The optional file watcher reloads the file
// on change so edits take effect without a restart.
package rules
