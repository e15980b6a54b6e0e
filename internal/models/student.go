package models

import "time"

// Student represents an enrolled practitioner (alumno).
type Student struct {
	ID         string     `db:"id" json:"id"`
	DocumentID string     `db:"document_id" json:"document_id"`
	FullName   string     `db:"full_name" json:"full_name"`
	BirthDate  time.Time  `db:"birth_date" json:"birth_date"`
	Email      string     `db:"email" json:"email"`
	Phone      string     `db:"phone" json:"phone"`
	Address    string     `db:"address" json:"address"`
	CategoryID *string    `db:"category_id" json:"category_id,omitempty"`
	BeltID     *string    `db:"belt_id" json:"belt_id,omitempty"`
	GuardianID *string    `db:"guardian_id" json:"guardian_id,omitempty"`
	Active     bool       `db:"active" json:"active"`
	Deleted    bool       `db:"deleted" json:"-"`
	EnrolledAt time.Time  `db:"enrolled_at" json:"enrolled_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	CategoryID string
	BeltID     string
	GuardianID string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// StudentDetail contains student information joined with category, belt and
// guardian context.
type StudentDetail struct {
	Student
	CategoryName *string `db:"category_name" json:"category_name,omitempty"`
	BeltName     *string `db:"belt_name" json:"belt_name,omitempty"`
	BeltColor    *string `db:"belt_color" json:"belt_color,omitempty"`
	BeltRank     *int    `db:"belt_rank" json:"belt_rank,omitempty"`
	GuardianName *string `db:"guardian_name" json:"guardian_name,omitempty"`
}

// AdultAge is the age at which a guardian stops being required.
const AdultAge = 18
