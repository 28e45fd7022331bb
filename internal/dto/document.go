package dto

// ── documents ──

// DocumentRequest multipart fields of a new document. The file part is read separately.
type DocumentRequest struct {
	Title       string `form:"title"       binding:"required,max=200"`
	Type        string `form:"type"        binding:"required,oneof=homework excuse_of_absence grade_review other"`
	Description string `form:"description" binding:"max=5000"`
	Course      string `form:"course"      binding:"required,coursecode"`
}

// UpdateDraftRequest partial draft update. Nil fields are left unchanged.
type UpdateDraftRequest struct {
	Title       *string `form:"title"       binding:"omitempty,min=1,max=200"`
	Type        *string `form:"type"        binding:"omitempty,oneof=homework excuse_of_absence grade_review other"`
	Description *string `form:"description" binding:"omitempty,max=5000"`
	Course      *string `form:"course"      binding:"omitempty,coursecode"`
}

// DocumentListQuery optional filters for the caller's documents.
type DocumentListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=draft submitted approved rejected"`
	Type   string `form:"type"   binding:"omitempty,oneof=homework excuse_of_absence grade_review other"`
	Course string `form:"course" binding:"omitempty,coursecode"`
}

// DocumentResponse document view. Student is set on doctor-facing lists.
type DocumentResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Course      string       `json:"course"`
	File        *string      `json:"file"`
	FileName    *string      `json:"fileName,omitempty"`
	Status      string       `json:"status"`
	OwnerID     string       `json:"ownerId"`
	ReviewedBy  *string      `json:"reviewedBy,omitempty"`
	ReviewedAt  *string      `json:"reviewedAt,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
	Student     *UserSummary `json:"student,omitempty"`
}
