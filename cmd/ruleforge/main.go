// Ruleforge is a rule expression engine and API server.
//
// It parses boolean rule expressions over record attributes, evaluates
// them against JSON records, and serves rule management and evaluation
// over HTTP.
//
// Usage:
//
//	# Start the API server with default configuration
//	ruleforge serve
//
//	# Start with a custom configuration file
//	ruleforge serve --config /path/to/config.yaml
//
//	# Check a rule's syntax
//	ruleforge check "age > 30 AND department = 'Sales'"
//
//	# Evaluate rules against a record
//	ruleforge eval --rule "age < 10" --record '{"age": 5}'
//
//	# Show version information
//	ruleforge version
package main

func main() {
	Execute()
}
