// Package memory provides the in-process implementation of store.JobStore.
// It is the default backend: jobs live in a map for as long as the process
// runs or until the retention sweep removes them.
package memory
