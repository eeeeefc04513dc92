package models

// AnalysisMode selects what the vision model should examine.
type AnalysisMode string

const (
	ModeProfile AnalysisMode = "PROFILE"
	ModeMammary AnalysisMode = "MAMMARY"
)

// AnalysisRequest is one photo submitted for biometric analysis.
type AnalysisRequest struct {
	Image     []byte              `json:"-"`
	MediaType string              `json:"mediaType"`
	Mode      AnalysisMode        `json:"mode" validate:"required,oneof=PROFILE MAMMARY"`
	Breed     Race                `json:"breed"`
	Reference ReferenceObjectType `json:"reference"`
}

// AnalysisResult is the structured answer of the external analysis model.
type AnalysisResult struct {
	Race           Race           `json:"race" validate:"required,oneof=HAMRA OUDA SIDAHOU BERBERE CROISE INCONNU"`
	CoatColor      string         `json:"robe_couleur" validate:"required"`
	CoatQuality    string         `json:"robe_qualite" validate:"required"`
	Measurements   Measurements   `json:"measurements,omitempty" validate:"omitempty,dive,gt=0"`
	MammaryTraits  map[string]any `json:"mammary_traits,omitempty"`
	MammaryScore   *float64       `json:"mammary_score,omitempty" validate:"omitempty,gte=0,lte=10"`
	Classification string         `json:"classification" validate:"required"`
	Feedback       string         `json:"feedback"`
}

// IsKnownRace reports whether r is one of the accepted breed labels.
func IsKnownRace(r Race) bool {
	for _, known := range Races {
		if known == r {
			return true
		}
	}
	return false
}
