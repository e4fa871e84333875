package database

import (
	"context"

	"gorm.io/gorm"
)

// RecordStore reads LFA1 master records. It never writes.
type RecordStore struct {
	db *gorm.DB
}

// NewRecordStore creates a record store on the given connection
func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// ListForGrouping returns every record with only the columns the grouping
// key and member list need (lifnr, name1, ort01).
func (s *RecordStore) ListForGrouping(ctx context.Context) ([]MasterRecord, error) {
	var records []MasterRecord
	err := s.db.WithContext(ctx).
		Select("lifnr", "name1", "ort01").
		Order("lifnr ASC").
		Find(&records).Error
	return records, err
}

// ListByKey returns the full records of one group ordered by lifnr. An empty
// name or locality matches NULL as well as '' so the result is the same
// member set the grouping produces.
func (s *RecordStore) ListByKey(ctx context.Context, name, locality string) ([]MasterRecord, error) {
	var records []MasterRecord
	query := s.db.WithContext(ctx).Model(&MasterRecord{})
	query = whereKeyColumn(query, "name1", name)
	query = whereKeyColumn(query, "ort01", locality)
	err := query.Order("lifnr ASC").Find(&records).Error
	return records, err
}

func whereKeyColumn(query *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return query.Where("(" + column + " IS NULL OR " + column + " = '')")
	}
	return query.Where(column+" = ?", value)
}
