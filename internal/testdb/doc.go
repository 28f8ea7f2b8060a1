// Package testdb provides helpers for database integration tests.
//
// Each test runs in its own transaction which is rolled back when the test
// completes, so tests can run in parallel against one database without
// cleanup:
//
//	func TestCreateModule(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        modules := postgres.NewPostgresModuleStore(tx, nil)
//	        // ...
//	    })
//	}
//
// GetTestDBWithT skips the test when none of DATABASE_URL,
// LEARNPATH_TEST_DB_URL or LEARNPATH_DATABASE_URL is set, and applies the
// embedded migrations once per test binary.
package testdb
