package history

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var _ Store = (*GormStore)(nil)

// GormStore is a Store backed by a gorm-managed database.
type GormStore struct {
	db *gorm.DB
}

// NewGorm wraps db into a GormStore, migrating the run record schema.
func NewGorm(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// NewSqlite3 opens the sqlite database at dbPath and wraps it into a GormStore.
// Pass ":memory:" as dbPath for an in-memory database.
func NewSqlite3(dbPath string, opts ...gorm.Option) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), opts...)
	if err != nil {
		return nil, err
	}
	return NewGorm(db)
}

func (s *GormStore) Record(rec RunRecord) error {
	result := s.db.Create(&rec)
	return result.Error
}

func (s *GormStore) FindByTask(taskId string, offset, limit int) ([]RunRecord, error) {
	var records []RunRecord

	tx := s.db.
		Where("task_id = ?", taskId).
		Order("finished_at asc")
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	result := tx.Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}
