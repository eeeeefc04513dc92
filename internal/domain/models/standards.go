package models

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// BreedStandard describes the reference morphology of a breed. Measurement
// ranges are keyed by morphology trait id.
type BreedStandard struct {
	Race         Race             `json:"race"`
	FullName     string           `json:"nom_complet"`
	Color        string           `json:"couleur"`
	Origins      []string         `json:"origines"`
	Traits       []string         `json:"caracteristiques"`
	FemaleWeight Range            `json:"poids_femelle"`
	MaleWeight   Range            `json:"poids_male"`
	Measurements map[string]Range `json:"mensurations"`
}

// WeightRange returns the adult weight range for the given sex.
func (b BreedStandard) WeightRange(sex Sex) Range {
	if sex == SexMale {
		return b.MaleWeight
	}
	return b.FemaleWeight
}

// BreedStandards holds the reference standards keyed by race.
var BreedStandards = map[Race]BreedStandard{
	RaceHamra: {
		Race:         RaceHamra,
		FullName:     "Hamra (Rousse)",
		Color:        "Rouge à marron",
		Origins:      []string{"Sud Algérien"},
		Traits:       []string{"Résistance extrême", "Laitière"},
		FemaleWeight: Range{Min: 45, Max: 60},
		MaleWeight:   Range{Min: 65, Max: 85},
		Measurements: map[string]Range{
			TraitLength: {Min: 90, Max: 120},
			TraitHeight: {Min: 60, Max: 80},
			TraitGirth:  {Min: 90, Max: 115},
			TraitPelvis: {Min: 35, Max: 48},
		},
	},
	RaceOuda: {
		Race:         RaceOuda,
		FullName:     "Ouled Djellal (Blanche)",
		Color:        "Blanche",
		Origins:      []string{"Steppes"},
		Traits:       []string{"Format imposant", "Viande"},
		FemaleWeight: Range{Min: 55, Max: 75},
		MaleWeight:   Range{Min: 75, Max: 105},
		Measurements: map[string]Range{
			TraitLength: {Min: 100, Max: 135},
			TraitHeight: {Min: 75, Max: 95},
			TraitGirth:  {Min: 100, Max: 135},
			TraitPelvis: {Min: 40, Max: 55},
		},
	},
	RaceSidahou: {
		Race:         RaceSidahou,
		FullName:     "Sidahou",
		Color:        "Tête noire, corps blanc",
		Origins:      []string{"Ouest"},
		Traits:       []string{"Rustique", "Double fin"},
		FemaleWeight: Range{Min: 40, Max: 55},
		MaleWeight:   Range{Min: 60, Max: 80},
		Measurements: map[string]Range{
			TraitLength: {Min: 85, Max: 115},
			TraitHeight: {Min: 60, Max: 75},
			TraitGirth:  {Min: 85, Max: 110},
			TraitPelvis: {Min: 34, Max: 45},
		},
	},
}
