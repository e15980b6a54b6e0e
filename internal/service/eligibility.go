package service

import (
	"strings"

	"github.com/dojokai/dojo-api/internal/models"
)

var beltAccentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
)

// Feminine belt-name variants mapped to the canonical masculine form.
var beltNameAliases = map[string]string{
	"blanca":   "blanco",
	"amarilla": "amarillo",
	"roja":     "rojo",
	"negra":    "negro",
}

// NormalizeBeltName lowers, strips accents and collapses Spanish
// masculine/feminine variants so "Blanca" ≡ "blanco" and "Marrón" ≡
// "marron".
func NormalizeBeltName(name string) string {
	normalized := beltAccentReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	if canonical, ok := beltNameAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// EligibleStudents selects the active students whose normalized belt name
// exactly equals the exam's origin belt. No ordinal matching: a student one
// rank above or below is excluded.
func EligibleStudents(def models.ExamDefinition, roster []models.StudentDetail) []models.StudentDetail {
	origin := NormalizeBeltName(def.OriginBelt)
	eligible := make([]models.StudentDetail, 0)
	for _, student := range roster {
		if !student.Active {
			continue
		}
		if student.BeltName == nil {
			continue
		}
		if NormalizeBeltName(*student.BeltName) == origin {
			eligible = append(eligible, student)
		}
	}
	return eligible
}
