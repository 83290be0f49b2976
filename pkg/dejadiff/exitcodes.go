// Package dejadiff provides public constants for tools that wrap the
// dejadiff CLI, such as CI jobs deciding whether a nightly run failed.
package dejadiff

// Exit codes returned by the dejadiff CLI.
const (
	// ExitSuccess indicates the run completed and results were published.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure (harness could not be launched,
	// publishing failed). No results are published for a failed run.
	ExitFailure = 1

	// ExitConfigError indicates a configuration error (invalid config, a test
	// without a command, unknown driver or sink).
	ExitConfigError = 2

	// ExitEnvError indicates an environment error (a sink or collector could
	// not be set up).
	ExitEnvError = 3
)
