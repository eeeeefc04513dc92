package models

import "time"

// EliteEwe ranks a female by her average milk yield and quality.
type EliteEwe struct {
	SheepID      string  `json:"sheepId"`
	TagID        string  `json:"tagId"`
	Name         string  `json:"nom"`
	Race         Race    `json:"race"`
	AvgLiters    float64 `json:"avgLiters"`
	AvgButterfat float64 `json:"avgButterfat"`
	AvgProtein   float64 `json:"avgProtein"`
	Score        float64 `json:"score"`
}

// HerdDashboard aggregates the figures shown on the home screen.
type HerdDashboard struct {
	BreederID       string       `json:"breederId,omitempty"`
	HeadCount       int          `json:"headCount"`
	Females         int          `json:"females"`
	Males           int          `json:"males"`
	AverageWeight   float64      `json:"averageWeight"`
	TotalMilkLiters float64      `json:"totalMilkLiters"`
	WeekMilkLiters  float64      `json:"weekMilkLiters"`
	BreedCounts     map[Race]int `json:"breedCounts"`
	OpenGestations  int          `json:"openGestations"`
	HealthEvents    int          `json:"healthEvents"`
	FeedCost        float64      `json:"feedCost"`
	Elite           []EliteEwe   `json:"elite"`
	GeneratedAt     time.Time    `json:"generatedAt"`
}
