package cli

// Exit codes for zortex.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitErrors indicates the check completed but found error diagnostics.
	ExitErrors = 1

	// ExitWarnings indicates warnings were found in strict mode.
	ExitWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)
