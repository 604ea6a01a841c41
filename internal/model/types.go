package model

import "encoding/json"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Contact is a server-owned address book record. Owner, timestamps and
// revision are opaque to the client and only round-tripped.
type Contact struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address,omitempty"`
	Owner     string `json:"user,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Revision  int    `json:"__v"`
}

// UnmarshalJSON accepts "id" when "_id" is absent.
func (c *Contact) UnmarshalJSON(data []byte) error {
	type plain Contact
	var raw struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Contact(raw.plain)
	if c.ID == "" {
		c.ID = raw.AltID
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateContactRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
}

// UpdateContactRequest carries only the fields being changed.
type UpdateContactRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

type AuthData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type AuthResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    AuthData `json:"data"`
}

type ContactsResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    []Contact `json:"data"`
}

type ContactResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    Contact `json:"data"`
}
