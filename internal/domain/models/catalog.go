package models

// Morphology trait ids used as measurement keys.
const (
	TraitLength = "longueur"
	TraitHeight = "hauteur"
	TraitGirth  = "poitrine"
	TraitPelvis = "bassin"
	TraitDepth  = "profondeur"
	TraitCannon = "canon"
)

// TraitKind distinguishes measured traits from scored ones.
type TraitKind string

const (
	TraitQuantitative TraitKind = "quantitative"
	TraitQualitative  TraitKind = "qualitative"
)

// Trait describes one morphology or mammary characteristic.
type Trait struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Unit        string    `json:"unit,omitempty"`
	Description string    `json:"description"`
	Kind        TraitKind `json:"type"`
	Options     []string  `json:"options,omitempty"`
}

var MorphoTraits = []Trait{
	{ID: TraitLength, Label: "Longueur du Corps", Unit: "cm", Description: "Pointe épaule à pointe fesse.", Kind: TraitQuantitative},
	{ID: TraitHeight, Label: "Hauteur au Garrot", Unit: "cm", Description: "Sol au sommet du garrot.", Kind: TraitQuantitative},
	{ID: TraitGirth, Label: "Tour de Poitrine", Unit: "cm", Description: "Périmètre thoracique.", Kind: TraitQuantitative},
	{ID: TraitPelvis, Label: "Largeur Bassin", Unit: "cm", Description: "Largeur aux hanches.", Kind: TraitQuantitative},
	{ID: TraitDepth, Label: "Profondeur Poitrine", Unit: "cm", Description: "Sternum au dos.", Kind: TraitQuantitative},
	{ID: TraitCannon, Label: "Tour de Canon", Unit: "cm", Description: "Périmètre de l'os.", Kind: TraitQuantitative},
}

var MammaryTraits = []Trait{
	{ID: "trayon_longueur", Label: "Longueur Trayons", Unit: "cm", Description: "Longueur moyenne.", Kind: TraitQuantitative},
	{ID: "trayon_diametre", Label: "Diamètre Trayons", Unit: "cm", Description: "Base du trayon.", Kind: TraitQuantitative},
	{ID: "inter_trayon", Label: "Espace Trayons", Unit: "cm", Description: "Distance entre les deux.", Kind: TraitQuantitative},
	{ID: "volume_mammele", Label: "Volume Mammaire", Unit: "cm3", Description: "Estimation globale.", Kind: TraitQuantitative},
	{ID: "symetrie", Label: "Symétrie", Description: "Équilibre des quartiers.", Kind: TraitQualitative, Options: []string{"Symétrique", "Asymétrique"}},
	{ID: "attache", Label: "Attache", Description: "Solidité du maintien.", Kind: TraitQualitative, Options: []string{"Solide", "Moyenne", "Pendante"}},
	{ID: "forme", Label: "Forme", Description: "Conformation globale.", Kind: TraitQualitative, Options: []string{"Globuleuse", "Bifide", "En poire"}},
	{ID: "orientation", Label: "Orientation", Description: "Sortie des trayons.", Kind: TraitQualitative, Options: []string{"Verticale", "Latérale", "Divergente"}},
}

// ReferenceObjectType names the calibration object visible in a photo.
type ReferenceObjectType string

const (
	ReferenceNone      ReferenceObjectType = "AUCUN"
	ReferenceStick     ReferenceObjectType = "BATON_1M"
	ReferenceA4Sheet   ReferenceObjectType = "FEUILLE_A4"
	ReferenceCoin100DA ReferenceObjectType = "PIECE_100DA"
	ReferenceBankCard  ReferenceObjectType = "CARTE_BANCAIRE"
)

// ReferenceObject is a calibration object of known size.
type ReferenceObject struct {
	ID        ReferenceObjectType `json:"id"`
	Label     string              `json:"label"`
	Dimension string              `json:"dimension"`
}

var ReferenceObjects = []ReferenceObject{
	{ID: ReferenceNone, Label: "Aucun (Estimation)", Dimension: "-"},
	{ID: ReferenceStick, Label: "Bâton de 1 mètre", Dimension: "100 cm"},
	{ID: ReferenceA4Sheet, Label: "Feuille A4", Dimension: "21.0 x 29.7 cm"},
	{ID: ReferenceCoin100DA, Label: "Pièce 100 DA", Dimension: "2.95 cm"},
	{ID: ReferenceBankCard, Label: "Carte Bancaire", Dimension: "8.56 x 5.4 cm"},
}

// LookupReference returns the reference object with the given id.
func LookupReference(id ReferenceObjectType) (ReferenceObject, bool) {
	for _, ref := range ReferenceObjects {
		if ref.ID == id {
			return ref, true
		}
	}
	return ReferenceObject{}, false
}
