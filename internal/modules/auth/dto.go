package auth

import "resort/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateStaffRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	FullName string          `json:"full_name" validate:"required,min=2"`
	Role     domain.UserRole `json:"role" validate:"required,oneof=admin receptionist accountant"`
}

type UserPublic struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	User  UserPublic `json:"user"`
	Token string     `json:"token"`
}

func publicUser(u *domain.User) UserPublic {
	return UserPublic{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: string(u.Role)}
}
