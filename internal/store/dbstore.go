package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
	"github.com/ai-scholar/scholar-admin/internal/db/models"
)

const nameQueryPattern = "name = ?"

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// DBStore implements Store on top of a GORM-managed blobs table.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore creates a database-backed blob store.
func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &DBStore{db: db}, nil
}

// Load retrieves the blob stored under key.
func (s *DBStore) Load(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	var blob models.Blob
	result := s.db.Where(nameQueryPattern, key).First(&blob)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, result.Error
	}

	return blob.Value, nil
}

// Save creates or replaces the blob stored under key.
func (s *DBStore) Save(key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}

	var blob models.Blob
	result := s.db.Where(nameQueryPattern, key).First(&blob)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		blob = models.Blob{Name: key, Value: value}
		if err := s.db.Create(&blob).Error; err != nil {
			return classifyWriteError(err)
		}
		return nil
	}
	if result.Error != nil {
		return result.Error
	}

	blob.Value = value
	if err := s.db.Save(&blob).Error; err != nil {
		return classifyWriteError(err)
	}

	return nil
}

// Delete removes the blob stored under key.
func (s *DBStore) Delete(key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	return s.db.Where(nameQueryPattern, key).Delete(&models.Blob{}).Error
}

// Keys returns all stored keys beginning with prefix.
func (s *DBStore) Keys(prefix string) ([]string, error) {
	var names []string
	result := s.db.Model(&models.Blob{}).
		Where("name LIKE ?", prefix+"%").
		Order("name").
		Pluck("name", &names)
	if result.Error != nil {
		return nil, result.Error
	}

	return names, nil
}

// classifyWriteError tags driver-level disk and quota failures so the
// repository can run its quota recovery without message sniffing.
func classifyWriteError(err error) error {
	if apperr.Classify(err) == apperr.KindStorage {
		return apperr.Wrap(apperr.KindStorage, "blob write failed", err)
	}

	return err
}
