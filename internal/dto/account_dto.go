package dto

import (
	"time"

	"github.com/aulavirtual/aula-api/internal/models"
)

// AccountCreateRequest describes the payload for provisioning a new account.
type AccountCreateRequest struct {
	Name     string `form:"name" json:"name" validate:"required,min=2,max=150"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=4"`
	Role     string `form:"role" json:"role" validate:"required,oneof=admin teacher student"`
}

// AccountResponse is the serialized representation returned to API clients.
// The credential digest is never exposed.
type AccountResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccountResponse converts a model into a DTO.
func NewAccountResponse(model models.User) AccountResponse {
	return AccountResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      model.Role,
		CreatedAt: model.CreatedAt,
	}
}

// NewAccountResponseSlice converts a slice of models into DTOs.
func NewAccountResponseSlice(users []models.User) []AccountResponse {
	responses := make([]AccountResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewAccountResponse(user))
	}

	return responses
}
