package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupSQLiteStore(t *testing.T) string {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "scorecard.db")

	db, err := sql.Open("sqlite", storePath)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE blobs (key TEXT PRIMARY KEY, value BLOB, updated_at TEXT)`); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO blobs (key, value, updated_at) VALUES ('store.scorecard', '{"days":{},"weeks":{}}', '2024-06-01')`); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return storePath
}

func setupJSONStore(t *testing.T) string {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "scorecard.json")
	if err := os.WriteFile(storePath, []byte(`{"version":1,"blobs":{}}`), 0600); err != nil {
		t.Fatal(err)
	}
	return storePath
}

func TestCreateSQLiteBackup(t *testing.T) {
	storePath := setupSQLiteStore(t)
	mgr := NewManager(storePath, nil)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := os.Stat(backupPath); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if filepath.Ext(backupPath) != ".db" {
		t.Errorf("backup extension should follow the store, got %s", backupPath)
	}

	// The snapshot must itself be a readable store.
	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM blobs").Scan(&count); err != nil {
		t.Fatalf("backup is not a valid store: %v", err)
	}
	if count != 1 {
		t.Errorf("backup row count = %d", count)
	}
}

func TestCreateJSONBackup(t *testing.T) {
	storePath := setupJSONStore(t)
	mgr := NewManager(storePath, nil)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if filepath.Ext(backupPath) != ".json" {
		t.Errorf("backup extension should follow the store, got %s", backupPath)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil || string(data) != `{"version":1,"blobs":{}}` {
		t.Errorf("backup content mismatch: %s (err %v)", data, err)
	}
}

func TestCreateMissingStore(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"), nil)
	if _, err := mgr.Create(); err == nil {
		t.Error("backing up a missing store should fail")
	}
}

func TestListNewestFirst(t *testing.T) {
	storePath := setupJSONStore(t)

	// Distinct timestamps via an advancing clock.
	current := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	mgr := NewManager(storePath, func() time.Time { return current })

	for i := 0; i < 3; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatal(err)
		}
		current = current.Add(time.Minute)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Error("backups not sorted newest first")
		}
	}
}

func TestRotation(t *testing.T) {
	storePath := setupJSONStore(t)
	current := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	mgr := NewManager(storePath, func() time.Time { return current })

	for i := 0; i < 17; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatal(err)
		}
		current = current.Add(time.Minute)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 14 {
		t.Errorf("rotation should keep 14 backups, got %d", len(backups))
	}
}

func TestRestore(t *testing.T) {
	storePath := setupJSONStore(t)
	mgr := NewManager(storePath, nil)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}

	// Change the live store, then restore the snapshot.
	if err := os.WriteFile(storePath, []byte(`{"version":1,"blobs":{"x":1}}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Restore(backupPath); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	data, err := os.ReadFile(storePath)
	if err != nil || string(data) != `{"version":1,"blobs":{}}` {
		t.Errorf("store not restored: %s (err %v)", data, err)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	storePath := setupJSONStore(t)
	mgr := NewManager(storePath, nil)

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`not json`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Restore(bad); err == nil {
		t.Error("restoring an invalid backup should fail")
	}
}
