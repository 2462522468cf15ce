package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	return NewLocalStorage(t.TempDir())
}

func stageSession(t *testing.T, s *LocalStorage) string {
	t.Helper()
	sessionID, err := s.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := s.SaveStagedFile(sessionID, StagedExcelName, strings.NewReader("xlsx-bytes")); err != nil {
		t.Fatalf("SaveStagedFile: %v", err)
	}
	if _, err := s.SaveStagedPhoto(sessionID, "foto-1.webp", []byte("photo-1")); err != nil {
		t.Fatalf("SaveStagedPhoto: %v", err)
	}
	if _, err := s.SaveStagedPhoto(sessionID, "foto-2.webp", []byte("photo-2")); err != nil {
		t.Fatalf("SaveStagedPhoto: %v", err)
	}
	return sessionID
}

func TestMigrateToPermanent(t *testing.T) {
	s := newTestStorage(t)
	sessionID := stageSession(t, s)

	res, err := s.MigrateToPermanent(sessionID, "sma-contoh", "7-sma-contoh.xlsx")
	if err != nil {
		t.Fatalf("MigrateToPermanent: %v", err)
	}
	if !res.ExcelMoved {
		t.Error("expected excel to be moved")
	}
	if res.PhotosMoved != 2 {
		t.Errorf("expected 2 photos moved, got %d", res.PhotosMoved)
	}
	if res.ExcelPublicPath != "/uploads/permanent/sma-contoh/7-sma-contoh.xlsx" {
		t.Errorf("unexpected excel public path: %s", res.ExcelPublicPath)
	}

	if _, err := os.Stat(s.PermanentPath("sma-contoh", "7-sma-contoh.xlsx")); err != nil {
		t.Errorf("excel missing at permanent path: %v", err)
	}
	if _, err := os.Stat(s.PermanentPath("sma-contoh", "photos", "foto-2.webp")); err != nil {
		t.Errorf("photo missing at permanent path: %v", err)
	}

	// folder staging harus sudah dibersihkan
	if _, err := os.Stat(filepath.Join(s.baseDir, "temp", sessionID)); !os.IsNotExist(err) {
		t.Error("staging session dir should be removed after migration")
	}
}

func TestMigrateToPermanentIdempotent(t *testing.T) {
	s := newTestStorage(t)
	sessionID := stageSession(t, s)

	if _, err := s.MigrateToPermanent(sessionID, "sma-contoh", "7-sma-contoh.xlsx"); err != nil {
		t.Fatalf("first migration: %v", err)
	}

	// Panggilan kedua pada pasangan sumber/tujuan yang sama: tidak boleh
	// error, hasil akhirnya sama.
	res, err := s.MigrateToPermanent(sessionID, "sma-contoh", "7-sma-contoh.xlsx")
	if err != nil {
		t.Fatalf("second migration should not error: %v", err)
	}
	if res.ExcelMoved {
		t.Error("second migration should not re-move the excel")
	}

	data, err := os.ReadFile(s.PermanentPath("sma-contoh", "7-sma-contoh.xlsx"))
	if err != nil {
		t.Fatalf("read migrated excel: %v", err)
	}
	if string(data) != "xlsx-bytes" {
		t.Errorf("migrated excel content changed: %q", data)
	}
}

func TestMigratePartialRetry(t *testing.T) {
	s := newTestStorage(t)
	sessionID := stageSession(t, s)

	// Simulasikan migrasi parsial: excel sudah sampai tujuan, staging masih ada.
	if err := os.MkdirAll(s.PermanentPath("sma-contoh"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.PermanentPath("sma-contoh", "7-sma-contoh.xlsx"), []byte("xlsx-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := s.MigrateToPermanent(sessionID, "sma-contoh", "7-sma-contoh.xlsx")
	if err != nil {
		t.Fatalf("retry migration: %v", err)
	}
	if res.PhotosMoved != 2 {
		t.Errorf("retry should still move photos, got %d", res.PhotosMoved)
	}
}

func TestReapStaleSessions(t *testing.T) {
	s := newTestStorage(t)
	stale := stageSession(t, s)
	fresh := stageSession(t, s)

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(s.baseDir, "temp", stale), old, old); err != nil {
		t.Fatal(err)
	}

	removed, err := s.ReapStaleSessions(24 * time.Hour)
	if err != nil {
		t.Fatalf("ReapStaleSessions: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 reaped session, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(s.baseDir, "temp", fresh)); err != nil {
		t.Errorf("fresh session should survive reaping: %v", err)
	}
}
