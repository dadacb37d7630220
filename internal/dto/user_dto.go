package dto

import (
	"time"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

// ProfileResponse exposes the role attached to a user.
type ProfileResponse struct {
	Role models.Role `json:"role"`
}

// UserResponse is the full account representation.
type UserResponse struct {
	ID        uint             `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Profile   *ProfileResponse `json:"profile,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	response := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
	if user.Profile != nil {
		response.Profile = &ProfileResponse{Role: user.Profile.Role}
	}
	return response
}

// NewUserResponseSlice converts a slice of users into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}

// UserUpdateRequest lets a principal update their own identity fields.
type UserUpdateRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

// AdminUserUpdateRequest covers the admin edit surface: username and email
// only, with duplicate checks performed by the service.
type AdminUserUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=150"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
}

// SetRoleRequest force-assigns a role to a user.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetRoleResponse reports the outcome of a role assignment.
type SetRoleResponse struct {
	UserID  uint        `json:"user_id"`
	NewRole models.Role `json:"new_role"`
}
