package models

import "time"

// ExamDefinition is a static origin→destination belt promotion step.
type ExamDefinition struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OriginBelt string `json:"origin_belt"`
	TargetBelt string `json:"target_belt"`
	OriginRank int    `json:"origin_rank"`
}

// ExamDefinitions lists the seven promotion steps between the canonical
// belts. Defined in code, never persisted.
var ExamDefinitions = []ExamDefinition{
	{ID: "blanco-amarillo", Name: "Blanco → Amarillo", OriginBelt: "Blanco", TargetBelt: "Amarillo", OriginRank: 1},
	{ID: "amarillo-naranja", Name: "Amarillo → Naranja", OriginBelt: "Amarillo", TargetBelt: "Naranja", OriginRank: 2},
	{ID: "naranja-verde", Name: "Naranja → Verde", OriginBelt: "Naranja", TargetBelt: "Verde", OriginRank: 3},
	{ID: "verde-azul", Name: "Verde → Azul", OriginBelt: "Verde", TargetBelt: "Azul", OriginRank: 4},
	{ID: "azul-marron", Name: "Azul → Marrón", OriginBelt: "Azul", TargetBelt: "Marrón", OriginRank: 5},
	{ID: "marron-rojo", Name: "Marrón → Rojo", OriginBelt: "Marrón", TargetBelt: "Rojo", OriginRank: 6},
	{ID: "rojo-negro", Name: "Rojo → Negro", OriginBelt: "Rojo", TargetBelt: "Negro", OriginRank: 7},
}

// ExamDefinitionByID resolves a definition by its slug.
func ExamDefinitionByID(id string) (ExamDefinition, bool) {
	for _, def := range ExamDefinitions {
		if def.ID == id {
			return def, true
		}
	}
	return ExamDefinition{}, false
}

// Evaluation is a scheduled exam event created atomically with its roster.
type Evaluation struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ExamID       string    `db:"exam_id" json:"exam_id"`
	Date         time.Time `db:"date" json:"date"`
	Time         string    `db:"time" json:"time"`
	Description  string    `db:"description" json:"description"`
	InstructorID *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EvaluationStudent links an invited student to an evaluation.
type EvaluationStudent struct {
	EvaluationID string `db:"evaluation_id" json:"evaluation_id"`
	StudentID    string `db:"student_id" json:"student_id"`
}

// EvaluationDetail carries the event with its enrolled students.
type EvaluationDetail struct {
	Evaluation
	InstructorName *string         `db:"instructor_name" json:"instructor_name,omitempty"`
	Students       []StudentDetail `db:"-" json:"students,omitempty"`
}
