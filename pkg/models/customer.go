package models

import "time"

// Customer is the account record behind the identity provider
type Customer struct {
	ID           string    `json:"id" bson:"-"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"` // Never expose in JSON
	DisplayName  string    `json:"displayName" bson:"displayName"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SetTimestamps sets createdAt on first call and always updates updatedAt
func (c *Customer) SetTimestamps() {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// Identity is the authenticated user as seen by checkout and order history
type Identity struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (c *Customer) Identity() Identity {
	return Identity{UserID: c.ID, DisplayName: c.DisplayName, Email: c.Email}
}

type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
