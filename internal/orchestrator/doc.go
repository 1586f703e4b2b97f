// Package orchestrator sequences the phases of a compatibility scenario.
//
// An upgrade scenario starts the from-version server, runs the prepare
// phase against it, stops it, starts the to-version server with the
// from container's volumes attached and runs the test phase:
//
//	start(from) -> prepare -> stop(from) -> start(to, volumes-from from) -> test
//	finally: stop(to), cleanup
//
// A rollback scenario runs the upgrade steps and then moves the state back:
//
//	upgrade -> stop(to) -> start(from, volumes-from to) -> test
//	finally: stop(from), cleanup
//
// Both scenarios share one lifecycle.Manager, so cleanup removes every
// container exactly once, after the outermost scenario.
package orchestrator
