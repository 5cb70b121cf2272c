// Package task runs background work on a bounded in-memory queue drained by
// a fixed pool of workers. Readiness refreshes are the only task type; they
// are recomputed on every run, so queued tasks are not persisted.
package task
