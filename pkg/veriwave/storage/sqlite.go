// Package storage persists reference fingerprints in SQLite via GORM.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/veriwave/veriwave/pkg/veriwave/model"
)

const DefaultDBFile = "veriwave.sqlite3"

var (
	errDBClientNil = errors.New("db client is nil")
	// ErrNotFound is returned when no recording exists under the given ID.
	ErrNotFound = errors.New("recording not found")
)

// DBClient wraps the GORM handle plus the underlying sql.DB for lifecycle
// control.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Recording is the persisted form of a reference recording. The fingerprint
// is stored as a JSON blob; it is opaque to the database and only ever read
// back whole.
type Recording struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	Name          string `gorm:"uniqueIndex:idx_recording_name" json:"name"`
	DurationMs    int    `json:"duration_ms"`
	SampleRate    int    `json:"sample_rate"`
	SchemaVersion int    `json:"schema_version"`
	Fingerprint   []byte `gorm:"type:blob" json:"-"`
	CreatedAt     time.Time
}

// NewDBClient opens the database at VERIWAVE_DB_PATH, falling back to
// DefaultDBFile in the working directory.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("VERIWAVE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Recording{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveRecording stores a fingerprint under a human-readable name and returns
// the generated recording ID. An existing recording with the same name is
// replaced.
func (c *DBClient) SaveRecording(name string, fp *model.Fingerprint) (string, error) {
	if c == nil || c.DB == nil {
		return "", errDBClientNil
	}

	blob, err := json.Marshal(fp)
	if err != nil {
		return "", fmt.Errorf("encoding fingerprint: %w", err)
	}

	rec := Recording{
		ID:            uuid.NewString(),
		Name:          name,
		DurationMs:    int(fp.Duration * 1000),
		SampleRate:    fp.SampleRate,
		SchemaVersion: fp.SchemaVersion,
		Fingerprint:   blob,
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		var existing Recording
		err := tx.Where("name = ?", name).First(&existing).Error
		switch {
		case err == nil:
			rec.ID = existing.ID
			return tx.Model(&existing).Updates(map[string]any{
				"duration_ms":    rec.DurationMs,
				"sample_rate":    rec.SampleRate,
				"schema_version": rec.SchemaVersion,
				"fingerprint":    rec.Fingerprint,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&rec).Error
		default:
			return fmt.Errorf("querying existing recording: %w", err)
		}
	})
	if err != nil {
		return "", fmt.Errorf("saving recording %q: %w", name, err)
	}
	return rec.ID, nil
}

// GetFingerprint loads the fingerprint stored under a recording ID.
func (c *DBClient) GetFingerprint(id string) (*model.Fingerprint, error) {
	if c == nil || c.DB == nil {
		return nil, errDBClientNil
	}
	var rec Recording
	if err := c.DB.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("querying recording: %w", err)
	}
	var fp model.Fingerprint
	if err := json.Unmarshal(rec.Fingerprint, &fp); err != nil {
		return nil, fmt.Errorf("decoding fingerprint %s: %w", id, err)
	}
	return &fp, nil
}

// GetFingerprintByName loads the fingerprint stored under a recording name.
func (c *DBClient) GetFingerprintByName(name string) (*model.Fingerprint, error) {
	if c == nil || c.DB == nil {
		return nil, errDBClientNil
	}
	var rec Recording
	if err := c.DB.Where("name = ?", name).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("querying recording: %w", err)
	}
	var fp model.Fingerprint
	if err := json.Unmarshal(rec.Fingerprint, &fp); err != nil {
		return nil, fmt.Errorf("decoding fingerprint %s: %w", name, err)
	}
	return &fp, nil
}

// ListRecordings returns metadata for every stored recording, without the
// fingerprint blobs.
func (c *DBClient) ListRecordings() ([]model.Recording, error) {
	if c == nil || c.DB == nil {
		return nil, errDBClientNil
	}
	var rows []Recording
	if err := c.DB.Select("id", "name", "duration_ms", "sample_rate", "schema_version").
		Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	out := make([]model.Recording, len(rows))
	for i, r := range rows {
		out[i] = model.Recording{
			ID:            r.ID,
			Name:          r.Name,
			DurationMs:    r.DurationMs,
			SampleRate:    r.SampleRate,
			SchemaVersion: r.SchemaVersion,
		}
	}
	return out, nil
}

// DeleteRecording removes a stored recording and its fingerprint.
func (c *DBClient) DeleteRecording(id string) error {
	if c == nil || c.DB == nil {
		return errDBClientNil
	}
	res := c.DB.Where("id = ?", id).Delete(&Recording{})
	if res.Error != nil {
		return fmt.Errorf("deleting recording: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
