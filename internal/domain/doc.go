// Package domain defines the study entities shared by the engine: cards and
// their scheduling state, review events, assessments, readiness snapshots,
// curricula and study plans. Subpackages hold the pure algorithms that
// operate on them.
package domain
