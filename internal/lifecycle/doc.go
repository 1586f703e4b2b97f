// Package lifecycle manages the Marqo containers of a single compatibility
// scenario.
//
// A Manager owns the set of containers it started. Pull and Start failures
// are fatal and returned as *errors.CompatError; Stop and cleanup failures
// are logged as warnings and never abort a scenario. CleanupAll removes
// every tracked container exactly once and empties the set.
//
// Containers are named <prefix>-<version> and labelled with the run id, so
// leftovers from an interrupted run can be found with
//
//	docker ps -a --filter label=compat.run=<run id>
package lifecycle
