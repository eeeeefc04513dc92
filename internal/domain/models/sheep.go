package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Race is a breed label as returned by the analysis model.
type Race string

const (
	RaceHamra    Race = "HAMRA"
	RaceOuda     Race = "OUDA"
	RaceSidahou  Race = "SIDAHOU"
	RaceBerbere  Race = "BERBERE"
	RaceCroise   Race = "CROISE"
	RaceInconnue Race = "INCONNU"
)

// Races lists the accepted breed labels.
var Races = []Race{RaceHamra, RaceOuda, RaceSidahou, RaceBerbere, RaceCroise, RaceInconnue}

// PhysiologicalState is the reproductive/production state of an animal.
type PhysiologicalState string

const (
	StateEmpty         PhysiologicalState = "VIDE"
	StateEarlyPregnant PhysiologicalState = "GESTANTE_DEBUT"
	StateLatePregnant  PhysiologicalState = "GESTANTE_FIN"
	StateNursing       PhysiologicalState = "ALLAITANTE"
	StateDry           PhysiologicalState = "TARIE"
	StateGrowing       PhysiologicalState = "EN_CROISSANCE"
)

// Dentition is the age estimate from incisor eruption.
type Dentition string

const (
	Dentition0 Dentition = "0_DENT"
	Dentition2 Dentition = "2_DENTS"
	Dentition4 Dentition = "4_DENTS"
	Dentition6 Dentition = "6_DENTS"
	Dentition8 Dentition = "8_DENTS"
)

// Sex of the animal.
type Sex string

const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

// SheepStatus tracks whether the animal is still in the flock.
type SheepStatus string

const (
	SheepActive SheepStatus = "actif"
	SheepCulled SheepStatus = "reforme"
	SheepSold   SheepStatus = "vendu"
)

// Sheep is one animal recorded by a completed analysis. Age is either
// AgeMonths or Dentition, never both.
type Sheep struct {
	ID             string             `json:"id"`
	UserID         string             `json:"userId"`
	BreederID      string             `json:"breederId"`
	Name           string             `json:"nom"`
	TagID          string             `json:"tagId"`
	Race           Race               `json:"race"`
	Sex            Sex                `json:"sexe"`
	AgeMonths      *int               `json:"age_mois,omitempty"`
	Dentition      Dentition          `json:"dentition,omitempty"`
	Weight         float64            `json:"poids"`
	State          PhysiologicalState `json:"etat_physiologique"`
	CoatColor      string             `json:"robe_couleur"`
	CoatQuality    string             `json:"robe_qualite"`
	AnalyzedAt     Timestamp          `json:"date_analyse"`
	Status         SheepStatus        `json:"statut"`
	Measurements   Measurements       `json:"measurements"`
	MammaryTraits  map[string]any     `json:"mammary_traits,omitempty"`
	MammaryScore   *float64           `json:"mammary_score,omitempty"`
	Classification string             `json:"classification,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	ImageURL       string             `json:"imageUrl,omitempty"`
}

func (s Sheep) GetID() string      { return s.ID }
func (s Sheep) OwnerID() string    { return s.UserID }
func (s Sheep) BreederRef() string { return s.BreederID }

// AgeLabel renders the age the way the inventory shows it.
func (s Sheep) AgeLabel() string {
	if s.Dentition != "" {
		return string(s.Dentition)
	}
	if s.AgeMonths != nil {
		return strconv.Itoa(*s.AgeMonths) + " mois"
	}
	return ""
}

// Measurements maps morphology trait ids to centimetres. Older records may hold
// numeric strings; those decode to numbers and anything else is dropped.
type Measurements map[string]float64

func (m *Measurements) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Measurements, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case float64:
			out[k] = val
		case string:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				out[k] = f
			}
		}
	}
	*m = out
	return nil
}
