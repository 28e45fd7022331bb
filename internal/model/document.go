package model

import "time"

// DocumentType kind of a submitted document.
type DocumentType string

const (
	DocumentHomework        DocumentType = "homework"
	DocumentExcuseOfAbsence DocumentType = "excuse_of_absence"
	DocumentGradeReview     DocumentType = "grade_review"
	DocumentOther           DocumentType = "other"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentHomework, DocumentExcuseOfAbsence, DocumentGradeReview, DocumentOther:
		return true
	}
	return false
}

// DocumentStatus lifecycle state: draft → submitted → approved | rejected.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusSubmitted DocumentStatus = "submitted"
	StatusApproved  DocumentStatus = "approved"
	StatusRejected  DocumentStatus = "rejected"
)

// Reviewed reports whether a doctor has decided on the document.
func (s DocumentStatus) Reviewed() bool {
	return s == StatusApproved || s == StatusRejected
}

// Document is a student submission reviewed by a doctor of its course.
type Document struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Type        DocumentType   `gorm:"type:varchar(30);not null"                      json:"type"`
	Description string         `gorm:"type:text;not null;default:''"                  json:"description"`
	Course      string         `gorm:"type:varchar(50);not null;index"                json:"course"`
	FileURL     *string        `gorm:"type:varchar(500)"                              json:"fileUrl,omitempty"`
	FileKey     *string        `gorm:"type:varchar(500)"                              json:"-"`
	FileName    *string        `gorm:"type:varchar(255)"                              json:"fileName,omitempty"`
	Status      DocumentStatus `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	OwnerID     string         `gorm:"type:uuid;not null;index"                       json:"ownerId"`
	ReviewedBy  *string        `gorm:"type:uuid"                                      json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time     `                                                      json:"reviewedAt,omitempty"`
	BaseModel

	Owner    *Account `gorm:"foreignKey:OwnerID;references:ID"    json:"owner,omitempty"`
	Reviewer *Account `gorm:"foreignKey:ReviewedBy;references:ID" json:"reviewer,omitempty"`
}

// TableName maps the model to its table.
func (Document) TableName() string { return "documents" }

// HasFile reports whether a blob is attached.
func (d *Document) HasFile() bool {
	return d.FileKey != nil && *d.FileKey != ""
}
