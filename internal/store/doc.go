// Package store defines interfaces for job persistence operations.
// These interfaces abstract the underlying storage mechanism (an in-process
// map or an expiring Redis key space) from the application's core logic.
// Neither implementation is durable: jobs live only until they are swept.
package store
