// Package ingestion parses uploaded Excel workbooks into the reference
// tables used by the analysis pipeline.
package ingestion

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/compliance/aml-engine/internal/models"
	"github.com/compliance/aml-engine/internal/store"
)

// Upload validation errors. Messages are surfaced verbatim to API
// clients.
var (
	ErrNoFilename         = errors.New("No filename provided.")
	ErrUnreadableWorkbook = errors.New("Unable to parse Excel file.")
)

// Service parses uploaded workbooks and swaps them into the store.
type Service struct {
	store *store.Store
}

// NewService creates a new upload service.
func NewService(store *store.Store) *Service {
	return &Service{store: store}
}

// UploadTransactions parses and stores a transaction workbook.
func (s *Service) UploadTransactions(filename string, r io.Reader) (*models.UploadResponse, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}

	start := time.Now()
	txns, warnings, err := ParseTransactions(r)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Transaction upload failed")
		return nil, ErrUnreadableWorkbook
	}
	s.store.SetTransactions(txns)

	log.Info().
		Str("filename", filename).
		Int("records", len(txns)).
		Int("warnings", len(warnings)).
		Dur("processing_time", time.Since(start)).
		Msg("Transactions uploaded")

	return response(len(txns), warnings), nil
}

// UploadWatchlist parses and stores a watchlist workbook.
func (s *Service) UploadWatchlist(filename string, r io.Reader) (*models.UploadResponse, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}

	start := time.Now()
	entries, warnings, err := ParseWatchlist(r)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Watchlist upload failed")
		return nil, ErrUnreadableWorkbook
	}
	s.store.SetWatchlist(entries)

	log.Info().
		Str("filename", filename).
		Int("records", len(entries)).
		Dur("processing_time", time.Since(start)).
		Msg("Watchlist uploaded")

	return response(len(entries), warnings), nil
}

// UploadHighRiskCountries parses and stores the country risk registry.
func (s *Service) UploadHighRiskCountries(filename string, r io.Reader) (*models.UploadResponse, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}

	start := time.Now()
	countries, warnings, err := ParseHighRiskCountries(r)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("High-risk country upload failed")
		return nil, ErrUnreadableWorkbook
	}
	s.store.SetHighRiskCountries(countries)

	log.Info().
		Str("filename", filename).
		Int("records", len(countries)).
		Dur("processing_time", time.Since(start)).
		Msg("High-risk countries uploaded")

	return response(len(countries), warnings), nil
}

// UploadWorkInstructions parses and stores a work instruction workbook.
func (s *Service) UploadWorkInstructions(filename string, r io.Reader) (*models.UploadResponse, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}

	start := time.Now()
	instructions, warnings, err := ParseWorkInstructions(r)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Work instruction upload failed")
		return nil, ErrUnreadableWorkbook
	}
	s.store.SetWorkInstructions(instructions)

	log.Info().
		Str("filename", filename).
		Int("records", len(instructions)).
		Dur("processing_time", time.Since(start)).
		Msg("Work instructions uploaded")

	return response(len(instructions), warnings), nil
}

// Status reports which reference tables are loaded.
func (s *Service) Status() models.UploadStatus {
	return s.store.Status()
}

// Clear removes all uploaded reference data.
func (s *Service) Clear() {
	s.store.Clear()
	log.Info().Msg("All uploaded data cleared")
}

// validateFilename rejects uploads without a usable Excel extension.
// The extension is taken after the last dot, case-insensitively.
func validateFilename(filename string) error {
	if filename == "" {
		return ErrNoFilename
	}
	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = strings.ToLower(filename[idx:])
	}
	if ext != ".xlsx" && ext != ".xls" {
		return fmt.Errorf("Invalid file type '%s'. Only .xlsx and .xls are accepted.", ext)
	}
	return nil
}

func response(count int, warnings []string) *models.UploadResponse {
	if warnings == nil {
		warnings = []string{}
	}
	return &models.UploadResponse{Status: "success", RecordCount: count, Warnings: warnings}
}
