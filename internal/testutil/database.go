package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the MySQL test database (VENDORDESK_TEST_DSN, or a local
// vendordesk_test schema) and skips the test when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("VENDORDESK_TEST_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/vendordesk_test"
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"VendorSettings"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the tables the repositories read.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createVendorSettingsTable := `
	CREATE TABLE IF NOT EXISTS VendorSettings (
		settingKey VARCHAR(100) NOT NULL PRIMARY KEY,
		settingValue VARCHAR(255) NOT NULL,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	if _, err := db.Exec(createVendorSettingsTable); err != nil {
		t.Logf("failed to create table VendorSettings: %v", err)
	}
	// leftovers from an aborted run
	if _, err := db.Exec("DELETE FROM VendorSettings"); err != nil {
		t.Logf("failed to clean table VendorSettings: %v", err)
	}
}
