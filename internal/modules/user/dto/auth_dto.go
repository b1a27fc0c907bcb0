package dto

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UIDByEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UIDByEmailResponse struct {
	UID string `json:"uid"`
}
