// Package domain contains the core business entities, value objects, and
// domain logic of the application: generation jobs, their inputs, and the
// slides they produce. It is independent of any specific infrastructure or
// delivery mechanism.
package domain
