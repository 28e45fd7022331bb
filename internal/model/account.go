package model

import "github.com/lib/pq"

// Role of an account. Fixed at registration.
type Role string

const (
	RoleStudent Role = "student"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleDoctor
}

// Account is a registered portal user (student or doctor).
type Account struct {
	ID                string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID            string         `gorm:"type:varchar(50);not null;uniqueIndex"          json:"userId"`
	Email             string         `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash      string         `gorm:"type:varchar(255);not null"                     json:"-"`
	FirstName         string         `gorm:"type:varchar(100);not null"                     json:"firstName"`
	LastName          string         `gorm:"type:varchar(100);not null"                     json:"lastName"`
	Role              Role           `gorm:"type:varchar(20);not null"                      json:"role"`
	Courses           pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"courses"`
	ProfilePicture    *string        `gorm:"type:varchar(500)"                              json:"profilePicture,omitempty"`
	ProfilePictureKey *string        `gorm:"type:varchar(500)"                              json:"-"`
	BaseModel
}

// TableName maps the model to its table.
func (Account) TableName() string { return "accounts" }

// FullName is the display name.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

// HasCourse reports whether the account is linked to the course code.
func (a *Account) HasCourse(code string) bool {
	return ContainsCourse(a.Courses, code)
}
