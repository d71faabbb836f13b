package types

type LoginRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

type CreateUserRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UpdateUserRequest struct {
	Role string `json:"role"`
}

type ValidateUserRequest struct {
	Email string `json:"email"`
}

type ValidateUserResponse struct {
	Allowed bool   `json:"allowed"`
	Role    string `json:"role,omitempty"`
}
