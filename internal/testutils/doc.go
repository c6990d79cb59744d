// Package testutils provides shared fixtures for tests that exercise the
// generation pipeline end to end or assert on JSON API responses.
package testutils
