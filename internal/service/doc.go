// Package service holds the orchestrators that load data through the store
// interfaces, run the pure engine components and persist their results.
// Each orchestrator lives in its own sub-package; this package carries the
// error type they share.
package service
