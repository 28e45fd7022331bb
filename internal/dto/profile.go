package dto

// ── profiles ──

// OfficeHourDTO one weekly office-hour slot.
type OfficeHourDTO struct {
	Day      string `json:"day"      binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Start    string `json:"start"    binding:"required,clocktime"`
	End      string `json:"end"      binding:"required,clocktime"`
	Location string `json:"location" binding:"max=100"`
}

// StudentProfileRequest create payload. A nil course list keeps the
// courses registered on the account.
type StudentProfileRequest struct {
	StudentID       string    `json:"studentId"       binding:"required,max=50"`
	Department      string    `json:"department"      binding:"max=100"`
	Year            int       `json:"year"            binding:"omitempty,min=1,max=10"`
	Semester        int       `json:"semester"        binding:"omitempty,min=1,max=3"`
	GPA             *float64  `json:"gpa"             binding:"omitempty,min=0,max=4"`
	EnrolledCourses *[]string `json:"enrolledCourses" binding:"omitempty,max=50,dive,coursecode"`
}

// UpdateStudentProfileRequest partial update. Nil fields are left unchanged.
type UpdateStudentProfileRequest struct {
	StudentID       *string   `json:"studentId"       binding:"omitempty,min=1,max=50"`
	Department      *string   `json:"department"      binding:"omitempty,max=100"`
	Year            *int      `json:"year"            binding:"omitempty,min=1,max=10"`
	Semester        *int      `json:"semester"        binding:"omitempty,min=1,max=3"`
	GPA             *float64  `json:"gpa"             binding:"omitempty,min=0,max=4"`
	EnrolledCourses *[]string `json:"enrolledCourses" binding:"omitempty,max=50,dive,coursecode"`
}

// StudentProfileResponse student profile view.
type StudentProfileResponse struct {
	ID              string       `json:"id"`
	StudentID       string       `json:"studentId"`
	Department      string       `json:"department"`
	Year            int          `json:"year"`
	Semester        int          `json:"semester"`
	GPA             *float64     `json:"gpa"`
	EnrolledCourses []string     `json:"enrolledCourses"`
	User            *UserSummary `json:"user,omitempty"`
	CreatedAt       string       `json:"createdAt"`
	UpdatedAt       string       `json:"updatedAt"`
}

// EnrolledStudentResponse a student of one of the doctor's courses.
type EnrolledStudentResponse struct {
	UserSummary
	Email     string   `json:"email"`
	Courses   []string `json:"courses"`
	StudentID *string  `json:"studentId,omitempty"`
}

// DoctorProfileRequest create payload. A nil course list keeps the
// courses registered on the account.
type DoctorProfileRequest struct {
	DoctorID        string          `json:"doctorId"        binding:"required,max=50"`
	Department      string          `json:"department"      binding:"max=100"`
	Specialization  string          `json:"specialization"  binding:"max=100"`
	OfficeHours     []OfficeHourDTO `json:"officeHours"     binding:"omitempty,max=20,dive"`
	AssignedCourses *[]string       `json:"assignedCourses" binding:"omitempty,max=50,dive,coursecode"`
}

// UpdateDoctorProfileRequest partial update. Nil fields are left unchanged.
type UpdateDoctorProfileRequest struct {
	DoctorID        *string          `json:"doctorId"        binding:"omitempty,min=1,max=50"`
	Department      *string          `json:"department"      binding:"omitempty,max=100"`
	Specialization  *string          `json:"specialization"  binding:"omitempty,max=100"`
	OfficeHours     *[]OfficeHourDTO `json:"officeHours"     binding:"omitempty,max=20,dive"`
	AssignedCourses *[]string        `json:"assignedCourses" binding:"omitempty,max=50,dive,coursecode"`
}

// DoctorProfileResponse doctor profile view.
type DoctorProfileResponse struct {
	ID              string          `json:"id"`
	DoctorID        string          `json:"doctorId"`
	Department      string          `json:"department"`
	Specialization  string          `json:"specialization"`
	OfficeHours     []OfficeHourDTO `json:"officeHours"`
	AssignedCourses []string        `json:"assignedCourses"`
	User            *UserSummary    `json:"user,omitempty"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}
