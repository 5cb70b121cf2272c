package testdb

import "os"

// Environment variables checked for an existing test database, in order.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTestDBURL   = "STUDY_TEST_DB_URL"
)

// DatabaseURL returns the first configured test database URL, or "" when
// a container should be started instead.
func DatabaseURL() string {
	for _, key := range []string{EnvDatabaseURL, EnvTestDBURL} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// IsCI reports whether the tests are running under a CI system.
func IsCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}
