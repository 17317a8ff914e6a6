//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests are isolated by transaction: WithTx hands the test a transaction
// that is rolled back when the test returns, so tests may run in parallel
// and never need to clean up.
//
//	func TestBootcampStore(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresBootcampStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The database URL is read from DEVCAMPER_TEST_DB_URL, falling back to
// DATABASE_URL. Tests are skipped when neither is set.
package testdb
