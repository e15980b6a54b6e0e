package models

import "time"

// ClassSchedule is a weekly timetable entry.
type ClassSchedule struct {
	ID           string    `db:"id" json:"id"`
	Weekday      int       `db:"weekday" json:"weekday"` // 1=Monday .. 7=Sunday
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	CategoryID   *string   `db:"category_id" json:"category_id,omitempty"`
	InstructorID *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	Notes        string    `db:"notes" json:"notes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassScheduleDetail joins category and instructor display names.
type ClassScheduleDetail struct {
	ClassSchedule
	CategoryName   *string `db:"category_name" json:"category_name,omitempty"`
	InstructorName *string `db:"instructor_name" json:"instructor_name,omitempty"`
}
