package dto

// ── shared views ──

// UserResponse public-safe account view. Never carries the password hash.
type UserResponse struct {
	ID             string   `json:"id"`
	UserID         string   `json:"userId"`
	Email          string   `json:"email"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Role           string   `json:"role"`
	Courses        []string `json:"courses"`
	ProfilePicture *string  `json:"profilePicture"`
	CreatedAt      string   `json:"createdAt"`
}

// UserSummary name and identifiers of an account, used to decorate lists.
type UserSummary struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
}
