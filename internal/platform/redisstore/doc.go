// Package redisstore implements store.JobStore on top of Redis.
//
// Each job is a JSON document under "<prefix>:job:<id>" whose key TTL equals
// the retention window, so Redis expires abandoned jobs on its own. A sorted
// set "<prefix>:jobs" scored by creation time lets the retention sweep find
// expired IDs without scanning the key space. Nothing here is durable.
package redisstore
