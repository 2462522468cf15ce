package service

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"pelpmr_backend/internals/features/registrations/dto"
	helper "pelpmr_backend/internals/helpers"
	"pelpmr_backend/internals/helpers/storage"
)

// Nama sheet pada template Excel yang diunduh pendaftar.
const (
	SheetPeserta    = "Data Peserta"
	SheetPendamping = "Data Pendamping"
)

// Header kolom template. Pencocokan longgar (trim + uppercase).
const (
	headerNama     = "NAMA LENGKAP"
	headerTTL      = "TEMPAT, TANGGAL LAHIR"
	headerAlamat   = "ALAMAT"
	headerAgama    = "AGAMA"
	headerGolDarah = "GOL DARAH"
	headerTahun    = "TAHUN MASUK"
	headerNoHP     = "NO HP"
	headerGender   = "GENDER (L/P)"
	headerFoto     = "FOTO"
	defaultFotoCol = "J"
	photoMaxWidth  = 400
	photoQuality   = 80
)

// ExtractResult adalah roster hasil pembacaan satu workbook.
type ExtractResult struct {
	Participants []dto.RosterRow `json:"participants"`
	Companions   []dto.RosterRow `json:"companions"`
	PhotosStaged int             `json:"photosStaged"`
}

// ExcelExtractor membaca workbook roster dan menitipkan foto tertanam ke
// area staging sesi. Baris cacat dibiarkan lewat; aturan skip diterapkan
// oleh Finalizer saat commit.
type ExcelExtractor struct {
	Storage storage.FileStorage
}

func NewExcelExtractor(fs storage.FileStorage) *ExcelExtractor {
	return &ExcelExtractor{Storage: fs}
}

func (e *ExcelExtractor) Extract(sessionID string, r io.Reader) (*ExtractResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("file Excel tidak bisa dibaca: %w", err)
	}
	defer f.Close()

	result := &ExtractResult{}

	result.Participants, result.PhotosStaged, err = e.extractSheet(f, SheetPeserta, sessionID, true)
	if err != nil {
		return nil, err
	}

	result.Companions, _, err = e.extractSheet(f, SheetPendamping, sessionID, false)
	if err != nil {
		// Sheet pendamping boleh tidak ada; kontingen tanpa pendamping sah.
		log.Printf("[INFO] sheet %q dilewati: %v", SheetPendamping, err)
		result.Companions = nil
	}

	return result, nil
}

func (e *ExcelExtractor) extractSheet(f *excelize.File, sheet, sessionID string, withPhotos bool) ([]dto.RosterRow, int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("sheet %q tidak ditemukan: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, 0, nil
	}

	colIndex := indexHeaders(rows[0])
	fotoCol := defaultFotoCol
	if idx, ok := colIndex[headerFoto]; ok {
		if name, cerr := excelize.ColumnNumberToName(idx + 1); cerr == nil {
			fotoCol = name
		}
	}

	var out []dto.RosterRow
	photos := 0
	for i, row := range rows[1:] {
		rowNum := i + 2 // baris Excel (1-based, setelah header)
		entry := dto.RosterRow{
			No:             i + 1,
			FullName:       cell(row, colIndex, headerNama),
			BirthPlaceDate: cell(row, colIndex, headerTTL),
			Address:        cell(row, colIndex, headerAlamat),
			Religion:       cell(row, colIndex, headerAgama),
			BloodType:      cell(row, colIndex, headerGolDarah),
			PhoneNumber:    cell(row, colIndex, headerNoHP),
			Gender:         cell(row, colIndex, headerGender),
		}
		if y, err := strconv.Atoi(strings.TrimSpace(cell(row, colIndex, headerTahun))); err == nil {
			entry.EntryYear = y
		}

		if isEmptyRow(entry) {
			continue
		}

		if withPhotos {
			if url := e.stagePhoto(f, sheet, fotoCol, rowNum, sessionID, entry.No); url != "" {
				entry.PhotoURL = url
				photos++
			}
		}

		out = append(out, entry)
	}
	return out, photos, nil
}

// stagePhoto mengambil gambar tertanam di sel foto, mengompres ke WebP, dan
// menyimpannya di folder photos sesi staging.
func (e *ExcelExtractor) stagePhoto(f *excelize.File, sheet, fotoCol string, rowNum int, sessionID string, no int) string {
	pics, err := f.GetPictures(sheet, fmt.Sprintf("%s%d", fotoCol, rowNum))
	if err != nil || len(pics) == 0 {
		return ""
	}

	compressed, err := helper.CompressImageToWebP(bytes.NewReader(pics[0].File), photoMaxWidth, photoQuality)
	if err != nil {
		log.Printf("[WARN] foto baris %d gagal dikompres: %v", rowNum, err)
		return ""
	}

	filename := fmt.Sprintf("foto-%d.webp", no)
	url, err := e.Storage.SaveStagedPhoto(sessionID, filename, compressed)
	if err != nil {
		log.Printf("[WARN] foto baris %d gagal disimpan: %v", rowNum, err)
		return ""
	}
	return url
}

func indexHeaders(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	return idx
}

func cell(row []string, colIndex map[string]int, header string) string {
	i, ok := colIndex[header]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isEmptyRow(r dto.RosterRow) bool {
	return r.FullName == "" && r.Gender == "" && r.BirthPlaceDate == "" && r.Address == ""
}
