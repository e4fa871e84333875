package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// decisionReplaceColumns are overwritten when a decision for an existing
// key is saved again. Together with the key this is the whole row.
var decisionReplaceColumns = []string{
	"lifnr_behalten",
	"lifnr_loeschen",
	"notiz",
	"bearbeitet_von",
	"status",
	"bearbeitet_am",
}

// DecisionStore persists one decision per (name1, ort01)
type DecisionStore struct {
	db *gorm.DB
}

// NewDecisionStore creates a decision store on the given connection
func NewDecisionStore(db *gorm.DB) *DecisionStore {
	return &DecisionStore{db: db}
}

// List returns all decisions ordered by group key
func (s *DecisionStore) List(ctx context.Context) ([]Decision, error) {
	var decisions []Decision
	err := s.db.WithContext(ctx).
		Order("name1 ASC").
		Order("ort01 ASC").
		Find(&decisions).Error
	return decisions, err
}

// Upsert inserts the decision or replaces the stored one with the same key.
// The conflict target is the compound unique index on (name1, ort01).
func (s *DecisionStore) Upsert(ctx context.Context, decision *Decision) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name1"}, {Name: "ort01"}},
		DoUpdates: clause.AssignmentColumns(decisionReplaceColumns),
	}).Create(decision).Error
}

// GetByKey returns the decision stored for a key, or gorm.ErrRecordNotFound
func (s *DecisionStore) GetByKey(ctx context.Context, name, locality string) (*Decision, error) {
	var decision Decision
	err := s.db.WithContext(ctx).
		Where("name1 = ? AND ort01 = ?", name, locality).
		First(&decision).Error
	if err != nil {
		return nil, err
	}
	return &decision, nil
}
