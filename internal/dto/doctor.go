package dto

// ── doctor views ──

// CourseStats document counts of one course.
type CourseStats struct {
	Course   string `json:"course"`
	Total    int64  `json:"total"`
	Pending  int64  `json:"pending"`
	Approved int64  `json:"approved"`
	Rejected int64  `json:"rejected"`
}

// DoctorStatsResponse counts scoped to the doctor's courses.
type DoctorStatsResponse struct {
	TotalDocuments    int64              `json:"totalDocuments"`
	PendingDocuments  int64              `json:"pendingDocuments"`
	ApprovedDocuments int64              `json:"approvedDocuments"`
	RejectedDocuments int64              `json:"rejectedDocuments"`
	TotalStudents     int64              `json:"totalStudents"`
	TotalCourses      int                `json:"totalCourses"`
	CourseBreakdown   []CourseStats      `json:"courseBreakdown"`
	RecentDocuments   []DocumentResponse `json:"recentDocuments"`
}
