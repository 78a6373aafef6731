package storage

import (
	"path/filepath"
	"testing"
)

func openTestKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "state", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV() error = %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestGetMissingKey(t *testing.T) {
	kv := openTestKV(t)

	value, ok, err := kv.Get("device_id")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Errorf("Get() ok = true for missing key, value = %q", value)
	}
}

func TestSetAndGet(t *testing.T) {
	kv := openTestKV(t)

	if err := kv.Set("device_id", "abc-123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := kv.Get("device_id")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false after Set()")
	}
	if value != "abc-123" {
		t.Errorf("Get() = %q, want %q", value, "abc-123")
	}
}

func TestSetOverwrites(t *testing.T) {
	kv := openTestKV(t)

	if err := kv.Set("memory_identity/dev-1", "uid-old"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := kv.Set("memory_identity/dev-1", "uid-new"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	value, ok, _ := kv.Get("memory_identity/dev-1")
	if !ok || value != "uid-new" {
		t.Errorf("Get() = %q, %v, want overwritten value", value, ok)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV() error = %v", err)
	}
	if err := kv.Set("display_name", "Dana"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	kv.Close()

	reopened, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV() reopen error = %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("display_name")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || value != "Dana" {
		t.Errorf("Get() after reopen = %q, %v, want persisted value", value, ok)
	}
}
