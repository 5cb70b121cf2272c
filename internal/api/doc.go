// Package api handles incoming HTTP requests, request validation and
// response formatting. Handlers translate HTTP concerns into calls on the
// card review, readiness, gap and study plan services.
package api
