// Package storage persists simulation runs and their fills to SQLite.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mmprofiler/internal/domain"
)

// Storage wraps the SQLite database behind run-oriented operations.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the database at dsn and migrates the schema.
func NewStorage(dsn string) (*Storage, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	// Pure Go SQLite, no cgo.
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.SimRun{}, &domain.FillRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

func dec(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// SaveRun persists one run summary with its fills in a single transaction and
// returns the stored record.
func (s *Storage) SaveRun(result domain.RunResult, makerKind string, seed uint64, numSteps int, fills []domain.Transaction) (*domain.SimRun, error) {
	run := &domain.SimRun{
		Label:      result.Label,
		MakerKind:  makerKind,
		Seed:       seed,
		NumSteps:   numSteps,
		FinalPrice: dec(result.FinalPrice),
		Cash:       dec(result.Cash),
		Asset:      dec(result.Asset),
		PnL:        dec(result.PnL),
		NumTx:      result.NumTx,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		for _, fill := range fills {
			record := domain.FillRecord{
				SimRunID: run.ID,
				Price:    dec(fill.Price),
				Quantity: dec(fill.Quantity),
				Time:     fill.Time,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save run %q: %w", result.Label, err)
	}
	return run, nil
}

// ListRuns returns stored runs, newest first, capped at limit (0 means all).
func (s *Storage) ListRuns(limit int) ([]domain.SimRun, error) {
	var runs []domain.SimRun
	q := s.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&runs).Error
	return runs, err
}

// GetRun retrieves one run by label. Not found is not an error.
func (s *Storage) GetRun(label string) (*domain.SimRun, error) {
	var run domain.SimRun
	err := s.db.First(&run, "label = ?", label).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LoadFills returns a run's fills in time order.
func (s *Storage) LoadFills(runID uint) ([]domain.FillRecord, error) {
	var fills []domain.FillRecord
	err := s.db.Where("sim_run_id = ?", runID).Order("time ASC").Find(&fills).Error
	return fills, err
}

// DeleteRun removes a run and its fills.
func (s *Storage) DeleteRun(runID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sim_run_id = ?", runID).Delete(&domain.FillRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.SimRun{}, runID).Error
	})
}
