package dto

import "github.com/skillbridge/skillbridge-api/internal/domain"

// UpdateUserRequest payload for moderation.
type UpdateUserRequest struct {
	Role   *domain.Role       `json:"role" validate:"omitempty,oneof=STUDENT TUTOR ADMIN"`
	Status *domain.UserStatus `json:"status" validate:"omitempty,oneof=ACTIVE BANNED"`
}
