// Package service contains the application use cases for generation jobs.
//
// JobService creates jobs, emits the event that schedules their generation,
// answers status queries and enforces the retention window. It depends on the
// store and events abstractions only; the HTTP layer and the task runner are
// wired in by cmd/server.
package service
