// Package generation produces the text and imagery for individual carousel
// slides. The Generator interface is the boundary between the job lifecycle
// and whatever produces content; TemplateGenerator fills slides from fixed
// tone-specific templates and a seeded placeholder image service, with an
// optional simulated latency per call.
package generation
