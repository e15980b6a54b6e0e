package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
)

func strPtrT(v string) *string { return &v }

func rosterStudent(name, belt string, active bool) models.StudentDetail {
	return models.StudentDetail{
		Student:  models.Student{ID: name, FullName: name, Active: active},
		BeltName: strPtrT(belt),
	}
}

func TestNormalizeBeltName(t *testing.T) {
	cases := map[string]string{
		"Blanco":   "blanco",
		"Blanca":   "blanco",
		"AMARILLA": "amarillo",
		"Marrón":   "marron",
		"marron":   "marron",
		"Negra":    "negro",
		"Naranja":  "naranja",
		" Verde ":  "verde",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeBeltName(input), "input %q", input)
	}
}

func TestEligibleStudentsFeminineVariantIncluded(t *testing.T) {
	def, ok := models.ExamDefinitionByID("amarillo-naranja")
	require.True(t, ok)

	roster := []models.StudentDetail{
		rosterStudent("ana", "Amarilla", true),
		rosterStudent("luis", "Amarillo", true),
		rosterStudent("maria", "Naranja", true),
	}
	eligible := EligibleStudents(def, roster)
	require.Len(t, eligible, 2)
	assert.Equal(t, "ana", eligible[0].ID)
	assert.Equal(t, "luis", eligible[1].ID)
}

func TestEligibleStudentsExcludedFromOtherExam(t *testing.T) {
	def, ok := models.ExamDefinitionByID("naranja-verde")
	require.True(t, ok)

	roster := []models.StudentDetail{rosterStudent("ana", "Amarilla", true)}
	assert.Empty(t, EligibleStudents(def, roster))
}

func TestEligibleStudentsNoOrdinalMatching(t *testing.T) {
	def, ok := models.ExamDefinitionByID("verde-azul")
	require.True(t, ok)

	// Two ranks below and one rank above: both excluded.
	roster := []models.StudentDetail{
		rosterStudent("low", "Naranja", true),
		rosterStudent("high", "Azul", true),
	}
	assert.Empty(t, EligibleStudents(def, roster))
}

func TestEligibleStudentsSkipsInactiveAndBeltless(t *testing.T) {
	def, ok := models.ExamDefinitionByID("blanco-amarillo")
	require.True(t, ok)

	roster := []models.StudentDetail{
		rosterStudent("inactive", "Blanco", false),
		{Student: models.Student{ID: "nobelt", Active: true}},
		rosterStudent("ok", "Blanca", true),
	}
	eligible := EligibleStudents(def, roster)
	require.Len(t, eligible, 1)
	assert.Equal(t, "ok", eligible[0].ID)
}

func TestExamDefinitionsCoverSevenSteps(t *testing.T) {
	require.Len(t, models.ExamDefinitions, 7)
	for i, def := range models.ExamDefinitions {
		assert.Equal(t, i+1, def.OriginRank)
	}
}
