package testhelpers

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/christian-rost/stammdatenmanagement/internal/database"
)

// MasterRecordBuilder builds MasterRecord instances for testing
type MasterRecordBuilder struct {
	record database.MasterRecord
}

// NewMasterRecordBuilder creates a record with the given identifier and no
// name or locality
func NewMasterRecordBuilder(lifnr string) *MasterRecordBuilder {
	return &MasterRecordBuilder{
		record: database.MasterRecord{
			Lifnr: lifnr,
			Mandt: Ptr("100"),
			Land1: Ptr("DE"),
		},
	}
}

// WithName sets name1
func (b *MasterRecordBuilder) WithName(name string) *MasterRecordBuilder {
	b.record.Name1 = &name
	return b
}

// WithLocality sets ort01
func (b *MasterRecordBuilder) WithLocality(locality string) *MasterRecordBuilder {
	b.record.Ort01 = &locality
	return b
}

// WithCountry sets land1
func (b *MasterRecordBuilder) WithCountry(country string) *MasterRecordBuilder {
	b.record.Land1 = &country
	return b
}

// Build returns the constructed record
func (b *MasterRecordBuilder) Build() database.MasterRecord {
	return b.record
}

// Record is shorthand for a record with name1 and ort01 set
func Record(lifnr, name, locality string) database.MasterRecord {
	return NewMasterRecordBuilder(lifnr).WithName(name).WithLocality(locality).Build()
}

// DecisionBuilder builds Decision instances for testing
type DecisionBuilder struct {
	decision database.Decision
}

// NewDecisionBuilder creates a resolved decision for the given key
func NewDecisionBuilder(name, locality string) *DecisionBuilder {
	return &DecisionBuilder{
		decision: database.Decision{
			Name1:     name,
			Ort01:     locality,
			DeleteIDs: database.StringList{},
			Author:    "reviewer",
			Status:    database.DecisionStatusResolved,
		},
	}
}

// Keep sets the surviving identifier
func (b *DecisionBuilder) Keep(id string) *DecisionBuilder {
	b.decision.KeepID = &id
	return b
}

// Delete sets the identifiers marked for removal
func (b *DecisionBuilder) Delete(ids ...string) *DecisionBuilder {
	b.decision.DeleteIDs = database.StringList(ids)
	return b
}

// WithNote sets the note
func (b *DecisionBuilder) WithNote(note string) *DecisionBuilder {
	b.decision.Note = &note
	return b
}

// WithAuthor sets the author
func (b *DecisionBuilder) WithAuthor(author string) *DecisionBuilder {
	b.decision.Author = author
	return b
}

// WithStatus sets the status
func (b *DecisionBuilder) WithStatus(status database.DecisionStatus) *DecisionBuilder {
	b.decision.Status = status
	return b
}

// Build returns the constructed decision
func (b *DecisionBuilder) Build() database.Decision {
	return b.decision
}

// UserBuilder builds User instances for testing
type UserBuilder struct {
	user     database.User
	password string
}

// NewUserBuilder creates a non-admin user whose password is "password123"
func NewUserBuilder(username string) *UserBuilder {
	return &UserBuilder{
		user: database.User{
			ID:       uuid.NewString(),
			Username: username,
			Email:    username + "@example.com",
		},
		password: "password123",
	}
}

// WithPassword sets the clear-text password that Build hashes
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// AsAdmin marks the user as administrator
func (b *UserBuilder) AsAdmin() *UserBuilder {
	b.user.IsAdmin = true
	return b
}

// Build returns the user with a bcrypt hash of its password
func (b *UserBuilder) Build() database.User {
	u := b.user
	hash, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u.PasswordHash = string(hash)
	return u
}
