// Package client talks to the carousel job API: it submits generation
// requests and polls job status until the job finishes, fails or the poll
// window runs out.
package client
