package testdb

import "os"

// Environment variables consulted for the test database URL, in order.
const (
	EnvDatabaseURL          = "DATABASE_URL"
	EnvLearnpathTestDBURL   = "LEARNPATH_TEST_DB_URL"
	EnvLearnpathDatabaseURL = "LEARNPATH_DATABASE_URL"
)

// GetTestDatabaseURL returns the first non-empty database URL from the
// environment, or "" when none is set.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvDatabaseURL, EnvLearnpathTestDBURL, EnvLearnpathDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// ShouldSkipDatabaseTest returns true if database integration tests should be skipped.
func ShouldSkipDatabaseTest() bool {
	return !IsIntegrationTestEnvironment()
}
