package models

// Breeder is one client exploitation managed by a user.
type Breeder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"nom"`
	Locality  string    `json:"wilaya"`
	Phone     string    `json:"telephone"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt Timestamp `json:"dateCreation"`
}

func (b Breeder) GetID() string   { return b.ID }
func (b Breeder) OwnerID() string { return b.UserID }
