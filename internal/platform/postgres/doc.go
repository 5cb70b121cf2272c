// Package postgres implements the store interfaces on PostgreSQL through
// sqlx and the pgx stdlib driver. The schema is managed by goose migrations
// embedded in the package.
package postgres
