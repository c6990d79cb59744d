// Package events decouples job creation from task execution.
//
// The job service emits a TaskRequestEvent of type TypeSlideGeneration when
// it stores a new job; a handler registered on the emitter turns the event
// into a task and hands it to the runner. Handlers run synchronously in
// registration order.
package events
