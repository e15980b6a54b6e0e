package models

// Belt represents a rank level (cinta). Rank 1 is the lowest grade.
type Belt struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Color string `db:"color" json:"color"`
	Rank  int    `db:"rank" json:"rank"`
}

// Canonical belt names in rank order. Seeded on first run and referenced by
// the exam definitions.
var CanonicalBelts = []Belt{
	{Name: "Blanco", Color: "#FFFFFF", Rank: 1},
	{Name: "Amarillo", Color: "#FFD700", Rank: 2},
	{Name: "Naranja", Color: "#FF8C00", Rank: 3},
	{Name: "Verde", Color: "#228B22", Rank: 4},
	{Name: "Azul", Color: "#1E66D0", Rank: 5},
	{Name: "Marrón", Color: "#8B4513", Rank: 6},
	{Name: "Rojo", Color: "#C0392B", Rank: 7},
	{Name: "Negro", Color: "#000000", Rank: 8},
}

// beltRankCeilings caps the belt rank a student may hold per display
// category. Younger brackets cannot be promoted past intermediate grades.
var beltRankCeilings = map[string]int{
	"Benjamin": 4,
	"Alevin":   5,
	"Infantil": 6,
	"Cadete":   7,
	"Junior":   8,
	"Senior":   8,
	"Veterano": 8,
}

// MaxRankForCategory returns the maximum permitted belt rank for a display
// category name. Unknown categories get no ceiling.
func MaxRankForCategory(displayCategory string) int {
	if max, ok := beltRankCeilings[displayCategory]; ok {
		return max
	}
	return len(CanonicalBelts)
}
