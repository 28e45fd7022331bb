package dto

// ── identity ──

// RegisterRequest self-registration payload.
type RegisterRequest struct {
	UserID    string   `json:"userId"    binding:"required,min=3,max=50"`
	Email     string   `json:"email"     binding:"required,email,max=255"`
	Password  string   `json:"password"  binding:"required,min=6,max=72"`
	FirstName string   `json:"firstName" binding:"required,max=100"`
	LastName  string   `json:"lastName"  binding:"required,max=100"`
	Role      string   `json:"role"      binding:"required,oneof=student doctor"`
	Courses   []string `json:"courses"   binding:"omitempty,max=50,dive,coursecode"`
}

// LoginRequest credential check by userId.
type LoginRequest struct {
	UserID   string `json:"userId"   binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateAccountRequest partial account update. Nil fields are left unchanged.
type UpdateAccountRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName"  binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email"     binding:"omitempty,email,max=255"`
}

// ChangePasswordRequest password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required,min=6,max=72"`
}

// AuthResponse token plus the caller's public view.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
