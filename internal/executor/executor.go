// Package executor applies a resolved plan sequentially against a
// destination (spec section 4.10). It writes in stable path order,
// emits a per-item start/completed event pair through an
// events.Sink, tolerates per-file IO errors without aborting the
// run, and mutates an in-memory lockfile document that the caller
// saves once at the end.
//
// Grounded on the teacher's pipeline.NewPartialError shape: some
// files can fail while the run still produces usable output, so
// per-item errors are collected into a partial result rather than
// aborting the whole run on the first failure.
package executor

import (
	"sort"

	"github.com/64andrewwalker/calvin/internal/destination"
	"github.com/64andrewwalker/calvin/internal/events"
	"github.com/64andrewwalker/calvin/internal/lockfile"
	"github.com/64andrewwalker/calvin/internal/plan"
)

// FileError is one item's non-fatal write failure.
type FileError struct {
	Path    string
	Message string
}

// Result is the outcome of one Run call.
type Result struct {
	Written []string
	Skipped []string
	Errors  []FileError

	// Aborted is set when ctx cancellation stopped the run between
	// items (spec section 5: cooperative cancellation).
	Aborted bool
}

// Run applies resolved.Writes to dest in stable path order, recording
// resolved.Skips verbatim, and returns once every item has been
// attempted or cancel reports true between items.
//
// dryRun performs no IO and no lockfile mutation but still emits the
// same event sequence (spec section 4.10).
//
// cancel is polled between items; a nil cancel never aborts.
func Run(resolved *plan.Resolved, dest destination.Destination, doc *lockfile.Document, sink events.Sink, command string, dryRun bool, cancel func() bool) *Result {
	writes := make([]plan.Item, len(resolved.Writes))
	copy(writes, resolved.Writes)
	sort.Slice(writes, func(i, j int) bool { return writes[i].Output.Path < writes[j].Output.Path })

	result := &Result{}

	for _, item := range resolved.Skips {
		result.Skipped = append(result.Skipped, item.Output.Path)
		emit(sink, events.Event{Event: events.ItemSkipped, Command: command, Path: item.Output.Path})
	}

	for _, item := range writes {
		if cancel != nil && cancel() {
			result.Aborted = true
			break
		}

		emit(sink, events.Event{Event: events.ItemStart, Command: command, Path: item.Output.Path})

		if dryRun {
			result.Written = append(result.Written, item.Output.Path)
			emit(sink, events.Event{Event: events.ItemWritten, Command: command, Path: item.Output.Path})
			continue
		}

		if err := dest.Write(item.Output.Path, item.Output.Content); err != nil {
			result.Errors = append(result.Errors, FileError{Path: item.Output.Path, Message: err.Error()})
			emit(sink, events.Event{Event: events.ItemError, Command: command, Path: item.Output.Path, Message: err.Error()})
			continue
		}

		doc.Set(item.LockfileKey, item.Output.ContentHash)
		result.Written = append(result.Written, item.Output.Path)
		emit(sink, events.Event{Event: events.ItemWritten, Command: command, Path: item.Output.Path})
	}

	return result
}

func emit(sink events.Sink, e events.Event) {
	if sink == nil {
		return
	}
	_ = sink.Emit(e)
}
