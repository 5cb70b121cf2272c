// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the engine's computations, so scheduling, scoring and plan generation
// stay independent of specific database technologies.
package store
