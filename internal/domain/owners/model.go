package owners

import "time"

// Owner es el dueño de mascotas. Tiene una cuenta de usuario OWNER vinculada.
type Owner struct {
	ID       string
	Name     string
	Email    string
	Username string
	Phone    string
	Address  string

	CreatedAt time.Time
	UpdatedAt time.Time
}
