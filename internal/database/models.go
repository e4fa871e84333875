package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList is a JSON encoded list of strings. A nil list is stored as [].
type StringList []string

// Scan implements the sql.Scanner interface
func (s *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("type assertion to []byte or string failed")
	}
	if len(raw) == 0 {
		*s = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}

// Value implements the driver.Valuer interface
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MasterRecord is one SAP vendor master row (LFA1). Every column except the
// identifier may be NULL in the source extract.
type MasterRecord struct {
	Lifnr string  `gorm:"column:lifnr;primaryKey;type:varchar(32)" json:"lifnr"`
	Name1 *string `gorm:"column:name1;index:idx_lfa1_group_key" json:"name1"`
	Name2 *string `gorm:"column:name2" json:"name2"`
	Name3 *string `gorm:"column:name3" json:"name3"`
	Name4 *string `gorm:"column:name4" json:"name4"`
	Ort01 *string `gorm:"column:ort01;index:idx_lfa1_group_key" json:"ort01"`
	Ort02 *string `gorm:"column:ort02" json:"ort02"`
	Land1 *string `gorm:"column:land1" json:"land1"`
	Mandt *string `gorm:"column:mandt" json:"mandt"`
}

func (MasterRecord) TableName() string {
	return "lfa1"
}

// DecisionStatus is the reviewer verdict for a duplicate group
type DecisionStatus string

const (
	DecisionStatusOpen     DecisionStatus = "open"
	DecisionStatusResolved DecisionStatus = "resolved"
	DecisionStatusIgnored  DecisionStatus = "ignored"
)

// Valid reports whether s is one of the known statuses
func (s DecisionStatus) Valid() bool {
	switch s {
	case DecisionStatusOpen, DecisionStatusResolved, DecisionStatusIgnored:
		return true
	}
	return false
}

// Decision is the latest reviewer verdict for one (name1, ort01) group.
// At most one row exists per key; writes replace the whole row.
type Decision struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name1     string         `gorm:"column:name1;not null;default:'';uniqueIndex:idx_decision_group_key" json:"name"`
	Ort01     string         `gorm:"column:ort01;not null;default:'';uniqueIndex:idx_decision_group_key" json:"locality"`
	KeepID    *string        `gorm:"column:lifnr_behalten" json:"keep_id"`
	DeleteIDs StringList     `gorm:"column:lifnr_loeschen;type:jsonb" json:"delete_ids"`
	Note      *string        `gorm:"column:notiz;type:text" json:"note"`
	Author    string         `gorm:"column:bearbeitet_von;type:varchar(64)" json:"author"`
	Status    DecisionStatus `gorm:"column:status;type:varchar(32);not null;default:'open'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:bearbeitet_am" json:"updated_at"`
}

func (Decision) TableName() string {
	return "dubletten_entscheidungen"
}

// User is a reviewer account
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
