package models

// ProductionRecord captures one milking event.
type ProductionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BreederID string    `json:"breederId"`
	SheepID   string    `json:"sheepId"`
	Date      Timestamp `json:"date"`
	Liters    float64   `json:"quantite_litres"`
	Butterfat float64   `json:"taux_butyreux"`
	Protein   float64   `json:"taux_proteique"`
	Lactose   float64   `json:"lactose"`
}

func (r ProductionRecord) GetID() string      { return r.ID }
func (r ProductionRecord) OwnerID() string    { return r.UserID }
func (r ProductionRecord) BreederRef() string { return r.BreederID }

// InterventionType classifies health records.
type InterventionType string

const (
	InterventionVaccine   InterventionType = "VACCIN"
	InterventionTreatment InterventionType = "TRAITEMENT"
	InterventionDeworming InterventionType = "DEPARASITAGE"
	InterventionExam      InterventionType = "EXAMEN"
)

// HealthRecord captures one veterinary intervention.
type HealthRecord struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	BreederID   string           `json:"breederId"`
	SheepID     string           `json:"sheepId"`
	Date        Timestamp        `json:"date"`
	Type        InterventionType `json:"type"`
	Description string           `json:"description"`
	Product     string           `json:"produit,omitempty"`
}

func (r HealthRecord) GetID() string      { return r.ID }
func (r HealthRecord) OwnerID() string    { return r.UserID }
func (r HealthRecord) BreederRef() string { return r.BreederID }

// GestationDays is the expected gestation length used for lambing forecasts.
const GestationDays = 150

// ReproductionStatus is the gestation lifecycle state.
type ReproductionStatus string

const (
	ReproductionGestating ReproductionStatus = "GESTATION"
	ReproductionCompleted ReproductionStatus = "TERMINE"
)

// ReproductionRecord captures one mating and its lambing forecast.
type ReproductionRecord struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	BreederID       string             `json:"breederId"`
	SheepID         string             `json:"sheepId"`
	MatingDate      Timestamp          `json:"date_saillie"`
	ExpectedLambing Timestamp          `json:"date_agnelage_prevue"`
	Status          ReproductionStatus `json:"statut"`
}

func (r ReproductionRecord) GetID() string      { return r.ID }
func (r ReproductionRecord) OwnerID() string    { return r.UserID }
func (r ReproductionRecord) BreederRef() string { return r.BreederID }

// FeedingObjective is the goal of a ration.
type FeedingObjective string

const (
	ObjectiveMaintenance FeedingObjective = "ENTRETIEN"
	ObjectiveFattening   FeedingObjective = "ENGRAISSEMENT"
	ObjectiveLactation   FeedingObjective = "LACTATION"
	ObjectiveGestation   FeedingObjective = "GESTATION"
)

// RationItem is one ingredient quantity requested for a ration.
type RationItem struct {
	Name       string  `json:"name"`
	QuantityKg float64 `json:"quantity_kg"`
}

// RationLine is a costed ration ingredient.
type RationLine struct {
	Name       string  `json:"name"`
	QuantityKg float64 `json:"quantity_kg"`
	Cost       float64 `json:"cost"`
}

// NutritionRecord captures one costed daily ration for an animal.
type NutritionRecord struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	BreederID   string           `json:"breederId"`
	SheepID     string           `json:"sheepId"`
	Date        Timestamp        `json:"date"`
	RationName  string           `json:"rationName"`
	Ingredients []RationLine     `json:"ingredients"`
	TotalCost   float64          `json:"totalCost"`
	Objective   FeedingObjective `json:"objectif"`
}

func (r NutritionRecord) GetID() string      { return r.ID }
func (r NutritionRecord) OwnerID() string    { return r.UserID }
func (r NutritionRecord) BreederRef() string { return r.BreederID }
