package domain

import "time"

type User struct {
	UserID          string     `json:"id" dynamodbav:"user_id"`
	Username        string     `json:"username" dynamodbav:"username"`
	Email           string     `json:"email" dynamodbav:"email"`
	Phone           *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash    string     `json:"-" dynamodbav:"password_hash"`
	Role            string     `json:"role" dynamodbav:"role"`
	DisplayName     string     `json:"display_name" dynamodbav:"display_name"`
	Neighborhood    string     `json:"neighborhood" dynamodbav:"neighborhood"`
	Bio             string     `json:"bio,omitempty" dynamodbav:"bio"`
	ProfileImageKey string     `json:"-" dynamodbav:"profile_image_key"`
	EmailConfirmed  bool       `json:"email_confirmed" dynamodbav:"email_confirmed"`
	AuthProvider    string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub       string     `json:"-"                       dynamodbav:"google_sub"`
	Enable          bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt       time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username     string  `json:"username" validate:"required"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        *string `json:"phone"`
	DisplayName  string  `json:"display_name" validate:"required"`
	Neighborhood string  `json:"neighborhood" validate:"required"`
}

type UpdateUserRequest struct {
	Username     *string `json:"username"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	DisplayName  *string `json:"display_name"`
	Neighborhood *string `json:"neighborhood"`
	Bio          *string `json:"bio"`
}
