package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

/*
FileStorage adalah facade penyimpanan file untuk controller & finalizer.

Dua area:
  - staging  : uploads/temp/<session-id>/        (upload selama wizard)
  - permanen : uploads/permanent/<school-slug>/  (setelah finalisasi)

Migrasi staging → permanen TIDAK satu unit atomik dengan commit database;
kontraknya at-least-once: setiap pemindahan idempoten (file yang sudah ada
di tujuan dihitung sukses) sehingga aman diulang sampai tuntas.
*/
type FileStorage interface {
	CreateSession() (sessionID string, err error)
	SaveStagedFile(sessionID, filename string, r io.Reader) (publicURL string, err error)
	SaveStagedPhoto(sessionID, filename string, data []byte) (publicURL string, err error)
	SavePermanent(schoolSlug, subdir, filename string, data []byte) (publicURL string, err error)

	MigrateToPermanent(sessionID, schoolSlug, excelName string) (*MigrationResult, error)
	RemoveSession(sessionID string) error
	ReapStaleSessions(maxAge time.Duration) (removed int, err error)

	PermanentURL(schoolSlug string, parts ...string) string
	PermanentPath(schoolSlug string, parts ...string) string
}

// MigrationResult merangkum hasil satu upaya migrasi.
type MigrationResult struct {
	ExcelMoved      bool
	ExcelPublicPath string
	PhotosMoved     int
	PhotoPublicDir  string
}

// Nama file spreadsheet di area staging (mengikuti template unduhan peserta).
const StagedExcelName = "data-peserta.xlsx"

// --------------------------------------------------
// Implementasi berbasis disk lokal
// --------------------------------------------------

type LocalStorage struct {
	baseDir string // contoh: ./public/uploads
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

func (s *LocalStorage) tempDir(sessionID string) string {
	return filepath.Join(s.baseDir, "temp", sessionID)
}

func (s *LocalStorage) permDir(schoolSlug string) string {
	return filepath.Join(s.baseDir, "permanent", schoolSlug)
}

func (s *LocalStorage) tempURL(sessionID string, parts ...string) string {
	return "/uploads/temp/" + sessionID + "/" + strings.Join(parts, "/")
}

func (s *LocalStorage) PermanentURL(schoolSlug string, parts ...string) string {
	return "/uploads/permanent/" + schoolSlug + "/" + strings.Join(parts, "/")
}

func (s *LocalStorage) PermanentPath(schoolSlug string, parts ...string) string {
	return filepath.Join(append([]string{s.permDir(schoolSlug)}, parts...)...)
}

func (s *LocalStorage) CreateSession() (string, error) {
	sessionID := uuid.New().String()
	if err := os.MkdirAll(filepath.Join(s.tempDir(sessionID), "photos"), 0o755); err != nil {
		return "", fmt.Errorf("gagal membuat folder sesi: %w", err)
	}
	return sessionID, nil
}

func (s *LocalStorage) SaveStagedFile(sessionID, filename string, r io.Reader) (string, error) {
	dir := s.tempDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("gagal menyimpan file staging: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("gagal menulis file staging: %w", err)
	}
	return s.tempURL(sessionID, filename), nil
}

func (s *LocalStorage) SaveStagedPhoto(sessionID, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.tempDir(sessionID), "photos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("gagal menyimpan foto staging: %w", err)
	}
	return s.tempURL(sessionID, "photos", filename), nil
}

func (s *LocalStorage) SavePermanent(schoolSlug, subdir, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.permDir(schoolSlug), subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("gagal menyimpan file permanen: %w", err)
	}
	return s.PermanentURL(schoolSlug, subdir, filename), nil
}

// MigrateToPermanent memindahkan isi sesi staging ke area permanen sekolah.
// Spreadsheet di-rename jadi excelName; foto dipindah per file supaya
// pengulangan setelah kegagalan parsial tetap aman.
func (s *LocalStorage) MigrateToPermanent(sessionID, schoolSlug, excelName string) (*MigrationResult, error) {
	tempDir := s.tempDir(sessionID)
	permDir := s.permDir(schoolSlug)

	if err := os.MkdirAll(permDir, 0o755); err != nil {
		return nil, fmt.Errorf("gagal membuat folder permanen: %w", err)
	}

	res := &MigrationResult{
		ExcelPublicPath: s.PermanentURL(schoolSlug, excelName),
		PhotoPublicDir:  s.PermanentURL(schoolSlug, "photos"),
	}

	// 1) Spreadsheet
	moved, err := moveFileIdempotent(
		filepath.Join(tempDir, StagedExcelName),
		filepath.Join(permDir, excelName),
	)
	if err != nil {
		return res, fmt.Errorf("gagal memindahkan spreadsheet: %w", err)
	}
	res.ExcelMoved = moved

	// 2) Foto-foto peserta
	tempPhotos := filepath.Join(tempDir, "photos")
	permPhotos := filepath.Join(permDir, "photos")
	if entries, rerr := os.ReadDir(tempPhotos); rerr == nil {
		if err := os.MkdirAll(permPhotos, 0o755); err != nil {
			return res, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			moved, merr := moveFileIdempotent(
				filepath.Join(tempPhotos, e.Name()),
				filepath.Join(permPhotos, e.Name()),
			)
			if merr != nil {
				log.Printf("[WARN] foto %s gagal dipindah: %v", e.Name(), merr)
				continue
			}
			if moved {
				res.PhotosMoved++
			}
		}
	}

	// 3) Bersihkan sesi staging
	if err := s.RemoveSession(sessionID); err != nil {
		log.Printf("[WARN] folder staging %s belum terhapus: %v", sessionID, err)
	}

	return res, nil
}

func (s *LocalStorage) RemoveSession(sessionID string) error {
	return os.RemoveAll(s.tempDir(sessionID))
}

// ReapStaleSessions menghapus sesi staging yang ditinggalkan pendaftarnya.
func (s *LocalStorage) ReapStaleSessions(maxAge time.Duration) (int, error) {
	root := filepath.Join(s.baseDir, "temp")
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, ierr := e.Info()
		if ierr != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
				log.Printf("[WARN] gagal reap sesi %s: %v", e.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// moveFileIdempotent memindahkan src → dst dengan kontrak:
//   - dst sudah ada  → sukses (sisa src dibersihkan)
//   - src tidak ada  → sukses tanpa perpindahan (dianggap sudah dipindah)
//   - rename gagal lintas device → fallback copy + remove
func moveFileIdempotent(src, dst string) (bool, error) {
	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(src)
		return true, nil
	}
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	if err := os.Rename(src, dst); err == nil {
		return true, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	_ = os.Remove(src)
	return true, nil
}
