package models

// Role is the account role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// User is a local account. Usernames are unique on a device.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	FarmName     string `json:"farmName"`
	Role         Role   `json:"role"`
}

func (u User) GetID() string { return u.ID }

// Public returns a copy without the credential, suitable for session settings
// and API responses.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
