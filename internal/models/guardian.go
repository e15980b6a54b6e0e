package models

import "time"

// Guardian represents the responsible adult (representante) for one or more
// minor students. A guardian has an independent lifecycle and is never
// removed when its last student is deleted.
type Guardian struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	Address    string    `db:"address" json:"address"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GuardianFilter captures list filters for guardians.
type GuardianFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// GuardianDetail adds the count of students linked to the guardian.
type GuardianDetail struct {
	Guardian
	StudentCount int `db:"student_count" json:"student_count"`
}
