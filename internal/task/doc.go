// Package task runs carousel generation jobs in the background.
//
// A TaskRunner owns a bounded TaskQueue and a WorkerPool. Submitting a task
// returns immediately; a Handle per task lets callers wait for completion.
// SlideGenerationTask drives one job from queued to a terminal state through
// the job store, and Sweeper periodically triggers retention cleanup.
package task
