package veriwave

import (
	"github.com/veriwave/veriwave/pkg/veriwave/model"
	"github.com/veriwave/veriwave/pkg/veriwave/storage"
)

// storageAdapter adapts the storage.DBClient to the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a SQLite storage backend at the given path.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveRecording(name string, fp *model.Fingerprint) (string, error) {
	return s.db.SaveRecording(name, fp)
}

func (s *storageAdapter) GetFingerprint(id string) (*model.Fingerprint, error) {
	return s.db.GetFingerprint(id)
}

func (s *storageAdapter) GetFingerprintByName(name string) (*model.Fingerprint, error) {
	return s.db.GetFingerprintByName(name)
}

func (s *storageAdapter) ListRecordings() ([]model.Recording, error) {
	return s.db.ListRecordings()
}

func (s *storageAdapter) DeleteRecording(id string) error {
	return s.db.DeleteRecording(id)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
