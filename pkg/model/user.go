package model

import "time"

type User struct {
	ID            string    `json:"id" bson:"_id"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	PasswordHash  string    `json:"-" bson:"password_hash"`
	ContactNumber string    `json:"contactNumber,omitempty" bson:"contact_number,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

type RegisterRequest struct {
	Username      string `json:"username" validate:"required,min=2,max=50"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Password      string `json:"password" validate:"required,min=6,max=72"`
	ContactNumber string `json:"contactNumber,omitempty" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}
