// Package errors provides typed errors with exit codes for compat-runner.
//
// # Error Types
//
// CompatError is the base error type that wraps an error with an exit code:
//
//	type CompatError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess         = 0  // Success
//	ExitGeneralError    = 1  // General/unknown errors
//	ExitContainerFailed = 5  // Pull, run or readiness failure
//	ExitConfigError     = 6  // Configuration error
//	ExitPrepareFailed   = 9  // A prepare step returned an error
//	ExitTestsFailed     = 10 // The test harness reported failures
//
// # Error Constructors
//
//	errors.ImagePullFailed("marqoai/marqo:2.5", err)
//	errors.ContainerStartFailed("2.5", err)
//	errors.PrepareFailed("partial-update-existing-index", err)
//	errors.TestsFailed(3)
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
