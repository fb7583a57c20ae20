package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !IsNotFound(gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm record-not-found to count as not found")
	}
	if !IsNotFound(fmt.Errorf("find run x: %w", gorm.ErrRecordNotFound)) {
		t.Fatalf("expected a wrapped record-not-found to count as not found")
	}
	if !IsNotFound(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows to count as not found")
	}
	if IsNotFound(fmt.Errorf("connection refused")) {
		t.Fatalf("did not expect an unrelated error to count as not found")
	}
	if IsNotFound(nil) {
		t.Fatalf("did not expect nil to count as not found")
	}
}

func TestUninitializedPoolGuards(t *testing.T) {
	t.Parallel()

	var pool *Pool
	if _, err := pool.Query(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("expected an error from a nil pool query")
	}
	if err := pool.Ping(context.Background()); err == nil {
		t.Fatalf("expected an error from a nil pool ping")
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("closing a nil pool must be a no-op, got %v", err)
	}
}

func TestNilRowsGuards(t *testing.T) {
	t.Parallel()

	var rows *Rows
	if rows.Next() {
		t.Fatalf("expected no rows from a nil rows handle")
	}
	var id string
	if err := rows.Scan(&id); err != ErrNoRows {
		t.Fatalf("expected ErrNoRows from a nil rows handle, got %v", err)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("unexpected error from a nil rows handle: %v", err)
	}
	rows.Close()
}
