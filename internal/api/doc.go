// Package api handles incoming HTTP requests for carousel generation jobs and
// serves the browser client's static assets. It translates HTTP concerns to
// JobService calls and maps service errors to status codes and safe messages.
package api
