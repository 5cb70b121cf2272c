// Package testdb provides a migrated PostgreSQL database for integration
// tests. It uses an existing server when one is configured through the
// environment and otherwise starts a throwaway container.
package testdb
