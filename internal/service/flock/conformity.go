package flock

import (
	"github.com/rahim112008/ovinmanager/internal/domain/models"
)

// Deviation verdicts.
const (
	WithinRange = "conforme"
	BelowRange  = "inferieur"
	AboveRange  = "superieur"
	NotMeasured = "non_mesure"
)

// TraitCheck compares one value with its breed range.
type TraitCheck struct {
	Trait  string       `json:"trait"`
	Value  float64      `json:"value"`
	Range  models.Range `json:"range"`
	Status string       `json:"status"`
}

// ConformityReport lists the deviations of an animal from its breed standard.
type ConformityReport struct {
	SheepID     string       `json:"sheepId"`
	Race        models.Race  `json:"race"`
	HasStandard bool         `json:"hasStandard"`
	Checks      []TraitCheck `json:"checks"`
	Conforming  int          `json:"conforming"`
	Deviating   int          `json:"deviating"`
}

// Conformity compares weight and morphology with the breed standard. Breeds
// without a standard produce an empty report.
func Conformity(sheep models.Sheep) ConformityReport {
	report := ConformityReport{SheepID: sheep.ID, Race: sheep.Race, Checks: []TraitCheck{}}
	std, ok := models.BreedStandards[sheep.Race]
	if !ok {
		return report
	}
	report.HasStandard = true

	report.add(check("poids", sheep.Weight, true, std.WeightRange(sheep.Sex)))
	for _, trait := range models.MorphoTraits {
		r, ok := std.Measurements[trait.ID]
		if !ok {
			continue
		}
		v, measured := sheep.Measurements[trait.ID]
		report.add(check(trait.ID, v, measured, r))
	}
	return report
}

func (r *ConformityReport) add(c TraitCheck) {
	r.Checks = append(r.Checks, c)
	switch c.Status {
	case WithinRange:
		r.Conforming++
	case BelowRange, AboveRange:
		r.Deviating++
	}
}

func check(trait string, v float64, measured bool, r models.Range) TraitCheck {
	c := TraitCheck{Trait: trait, Value: v, Range: r}
	switch {
	case !measured || v <= 0:
		c.Status = NotMeasured
	case v < r.Min:
		c.Status = BelowRange
	case v > r.Max:
		c.Status = AboveRange
	default:
		c.Status = WithinRange
	}
	return c
}
