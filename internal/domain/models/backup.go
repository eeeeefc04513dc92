package models

// BackupVersion is written into every exported document.
const BackupVersion = "3.0"

// Backup is the portable snapshot of one user's data.
type Backup struct {
	Users        []User               `json:"users"`
	Breeders     []Breeder            `json:"breeders"`
	Sheep        []Sheep              `json:"sheep"`
	Prices       []IngredientPrice    `json:"prices"`
	Production   []ProductionRecord   `json:"production"`
	Health       []HealthRecord       `json:"health"`
	Reproduction []ReproductionRecord `json:"reproduction"`
	Nutrition    []NutritionRecord    `json:"nutrition"`
	ExportDate   Timestamp            `json:"exportDate"`
	Version      string               `json:"version"`
}

// ImportSummary counts the rows written per table by an import.
type ImportSummary struct {
	Users        int `json:"users"`
	Breeders     int `json:"breeders"`
	Sheep        int `json:"sheep"`
	Prices       int `json:"prices"`
	Production   int `json:"production"`
	Health       int `json:"health"`
	Reproduction int `json:"reproduction"`
	Nutrition    int `json:"nutrition"`
}

// Total is the number of rows written.
func (s ImportSummary) Total() int {
	return s.Users + s.Breeders + s.Sheep + s.Prices + s.Production + s.Health + s.Reproduction + s.Nutrition
}
