package auth

import (
	serviceAuth "github.com/bulatminnakhmetov/vitrina-backend/internal/service/auth"
)

// Request models
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Response models
type UserDTO struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Token        string  `json:"token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// Conversion functions
func ToUserDTO(serviceUser *serviceAuth.User) UserDTO {
	return UserDTO{
		ID:    serviceUser.ID,
		Email: serviceUser.Email,
	}
}

func ToAuthResponse(serviceResponse *serviceAuth.AuthResponse) AuthResponse {
	return AuthResponse{
		Token:        serviceResponse.Token,
		RefreshToken: serviceResponse.RefreshToken,
		User:         ToUserDTO(serviceResponse.User),
	}
}
