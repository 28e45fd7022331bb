package model

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// StudentProfile holds academic details of a student account (1:1).
type StudentProfile struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AccountID       string         `gorm:"type:uuid;not null;uniqueIndex"                 json:"accountId"`
	StudentID       string         `gorm:"type:varchar(50);not null;uniqueIndex"          json:"studentId"`
	Department      string         `gorm:"type:varchar(100);not null;default:''"          json:"department"`
	Year            int            `gorm:"type:smallint;not null;default:1"               json:"year"`
	Semester        int            `gorm:"type:smallint;not null;default:1"               json:"semester"`
	GPA             *float64       `gorm:"type:numeric(3,2)"                              json:"gpa,omitempty"`
	EnrolledCourses pq.StringArray `gorm:"type:text[];not null;default:'{}'"              json:"enrolledCourses"`
	BaseModel

	Account *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
}

// TableName maps the model to its table.
func (StudentProfile) TableName() string { return "student_profiles" }

// OfficeHour one weekly slot. Day is an English weekday name, Start/End are "HH:MM".
type OfficeHour struct {
	Day      string `json:"day"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location,omitempty"`
}

// DoctorProfile holds faculty details of a doctor account (1:1).
type DoctorProfile struct {
	ID              string                          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AccountID       string                          `gorm:"type:uuid;not null;uniqueIndex"                 json:"accountId"`
	DoctorID        string                          `gorm:"type:varchar(50);not null;uniqueIndex"          json:"doctorId"`
	Department      string                          `gorm:"type:varchar(100);not null;default:''"          json:"department"`
	Specialization  string                          `gorm:"type:varchar(100);not null;default:''"          json:"specialization"`
	OfficeHours     datatypes.JSONSlice[OfficeHour] `gorm:"type:jsonb;not null;default:'[]'"               json:"officeHours"`
	AssignedCourses pq.StringArray                  `gorm:"type:text[];not null;default:'{}'"              json:"assignedCourses"`
	BaseModel

	Account *Account `gorm:"foreignKey:AccountID;references:ID" json:"account,omitempty"`
}

// TableName maps the model to its table.
func (DoctorProfile) TableName() string { return "doctor_profiles" }
