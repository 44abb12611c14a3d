// Package store persists calculation records and report documents in a
// relational database through GORM. It is the engine's storage
// collaborator: the engine only sees the Repository contract, one row per
// calculation record keyed by report and scope, with the scope-specific
// details union stored as a JSON column.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ghgledger/ghgledger/internal/engine"
	"github.com/ghgledger/ghgledger/internal/logging"
)

// ErrReportNotFound indicates a lookup for an unknown report.
var ErrReportNotFound = errors.New("report not found")

// Report is one sustainability-report document. Calculation records hang
// off a report by ID.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Company   string    `json:"company"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// calculationRow is the persisted shape of an engine.Record.
type calculationRow struct {
	ID          string         `gorm:"primaryKey"`
	ReportID    string         `gorm:"index;not null"`
	Scope       string         `gorm:"index;not null"`
	Source      string         `gorm:"not null"`
	Description string
	Quantity    float64
	Unit        string
	Emissions   float64 `gorm:"not null"`
	Details     datatypes.JSON
	Timestamp   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (calculationRow) TableName() string { return "emission_calculations" }

// Store is the GORM-backed implementation of engine.Repository plus the
// report-document CRUD around it.
type Store struct {
	db *gorm.DB
}

// Open connects to the database selected by dsn and migrates the schema.
// A postgres:// DSN selects Postgres; anything else is treated as a sqlite
// file path, with a default local file when dsn is empty.
func Open(dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	case dsn != "":
		dialector = sqlite.Open(dsn)
	default:
		dialector = sqlite.Open("ghgledger.db")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&Report{}, &calculationRow{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LoadRecords returns every calculation record persisted for a report,
// oldest first. A row whose details blob fails to parse is kept with empty
// details and a warning rather than failing the load.
func (s *Store) LoadRecords(ctx context.Context, reportID string) ([]engine.Record, error) {
	var rows []calculationRow
	err := s.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("timestamp asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading calculation rows: %w", err)
	}

	log := logging.FromContext(ctx)
	records := make([]engine.Record, 0, len(rows))
	for _, row := range rows {
		details, derr := engine.ParseDetails(row.Details)
		if derr != nil {
			log.Warn().
				Str("component", "store").
				Str("record_id", row.ID).
				Err(derr).
				Msg("malformed details blob, keeping record with empty details")
		}
		records = append(records, engine.Record{
			ID:          row.ID,
			Scope:       engine.Scope(row.Scope),
			Source:      row.Source,
			Description: row.Description,
			Quantity:    row.Quantity,
			Unit:        row.Unit,
			Emissions:   row.Emissions,
			Details:     details,
			Timestamp:   row.Timestamp,
		})
	}
	return records, nil
}

// SaveRecord upserts one calculation record for a report.
func (s *Store) SaveRecord(ctx context.Context, reportID string, rec engine.Record) error {
	raw, err := engine.MarshalDetails(rec.Details)
	if err != nil {
		return fmt.Errorf("encoding details: %w", err)
	}

	row := calculationRow{
		ID:          rec.ID,
		ReportID:    reportID,
		Scope:       string(rec.Scope),
		Source:      rec.Source,
		Description: rec.Description,
		Quantity:    rec.Quantity,
		Unit:        rec.Unit,
		Emissions:   rec.Emissions,
		Details:     datatypes.JSON(raw),
		Timestamp:   rec.Timestamp,
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving calculation row: %w", err)
	}
	return nil
}

// DeleteRecord removes a persisted calculation record, reporting whether a
// row existed.
func (s *Store) DeleteRecord(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&calculationRow{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("deleting calculation row: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CreateReport creates a report document with a fresh ID.
func (s *Store) CreateReport(ctx context.Context, title, company string, year int) (Report, error) {
	rep := Report{
		ID:      uuid.New(),
		Title:   title,
		Company: company,
		Year:    year,
	}
	if err := s.db.WithContext(ctx).Create(&rep).Error; err != nil {
		return Report{}, fmt.Errorf("creating report: %w", err)
	}
	return rep, nil
}

// GetReport fetches one report document.
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (Report, error) {
	var rep Report
	err := s.db.WithContext(ctx).First(&rep, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Report{}, ErrReportNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("fetching report: %w", err)
	}
	return rep, nil
}

// ListReports returns all report documents, newest first.
func (s *Store) ListReports(ctx context.Context) ([]Report, error) {
	var reps []Report
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&reps).Error
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return reps, nil
}
