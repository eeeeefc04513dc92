package models

// IngredientCategory groups feed ingredients.
type IngredientCategory string

const (
	CategoryConcentrate IngredientCategory = "CONCENTRE"
	CategoryForage      IngredientCategory = "FOURRAGE"
	CategoryMineral     IngredientCategory = "MINERAL"
)

// IngredientPrice is the per-breeder price of one feed ingredient in DA/kg.
type IngredientPrice struct {
	ID         string             `json:"id"`
	BreederID  string             `json:"breederId"`
	Name       string             `json:"name"`
	PricePerKg float64            `json:"pricePerUnit"`
	Category   IngredientCategory `json:"category"`
}

func (p IngredientPrice) GetID() string { return p.ID }

// FeedIngredient is a catalog entry used to seed a breeder's price list.
type FeedIngredient struct {
	ID           string
	Name         string
	Category     IngredientCategory
	DefaultPrice float64
}

// FeedCatalog is the fixed list of locally available ingredients.
var FeedCatalog = []FeedIngredient{
	{ID: "ORGE", Name: "Orge (Chaïr)", Category: CategoryConcentrate, DefaultPrice: 60},
	{ID: "SON", Name: "Son de blé (Nokhala)", Category: CategoryConcentrate, DefaultPrice: 45},
	{ID: "MAIS", Name: "Maïs jaune", Category: CategoryConcentrate, DefaultPrice: 85},
	{ID: "SOJA", Name: "Tourteau de Soja", Category: CategoryConcentrate, DefaultPrice: 160},
	{ID: "FOIN", Name: "Foin (Vesce-Avoine)", Category: CategoryForage, DefaultPrice: 40},
	{ID: "PAILLE", Name: "Paille (Tben)", Category: CategoryForage, DefaultPrice: 25},
	{ID: "CMV", Name: "CMV (Sels/Vitamines)", Category: CategoryMineral, DefaultPrice: 250},
	{ID: "ALIMENT_COMPLET", Name: "Aliment Complet (Engraissement)", Category: CategoryConcentrate, DefaultPrice: 95},
}

// PriceID is the deterministic id of a seeded catalog price for a breeder.
func PriceID(breederID, catalogID string) string {
	return breederID + "-" + catalogID
}
