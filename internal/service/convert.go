package service

import (
	"time"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/model"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func courseList(courses []string) []string {
	if courses == nil {
		return []string{}
	}
	return courses
}

func toUserResponse(a *model.Account) dto.UserResponse {
	return dto.UserResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		Email:          a.Email,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Role:           string(a.Role),
		Courses:        courseList(a.Courses),
		ProfilePicture: a.ProfilePicture,
		CreatedAt:      formatTime(a.CreatedAt),
	}
}

func toUserSummary(a *model.Account) *dto.UserSummary {
	if a == nil {
		return nil
	}
	return &dto.UserSummary{
		ID:     a.ID,
		UserID: a.UserID,
		Name:   a.FullName(),
		Role:   string(a.Role),
	}
}

func toDocumentResponse(d *model.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:          d.ID,
		Title:       d.Title,
		Type:        string(d.Type),
		Description: d.Description,
		Course:      d.Course,
		File:        d.FileURL,
		FileName:    d.FileName,
		Status:      string(d.Status),
		OwnerID:     d.OwnerID,
		ReviewedBy:  d.ReviewedBy,
		ReviewedAt:  formatTimePtr(d.ReviewedAt),
		CreatedAt:   formatTime(d.CreatedAt),
		UpdatedAt:   formatTime(d.UpdatedAt),
		Student:     toUserSummary(d.Owner),
	}
}

func toDocumentResponses(docs []model.Document) []dto.DocumentResponse {
	result := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, toDocumentResponse(&docs[i]))
	}
	return result
}

func toMessageResponse(m *model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        m.ID,
		From:      m.FromID,
		To:        m.ToID,
		Content:   m.Content,
		ReplyTo:   m.ReplyTo,
		CreatedAt: formatTime(m.CreatedAt),
		Sender:    toUserSummary(m.From),
	}
}

func toMessageResponses(msgs []model.Message) []dto.MessageResponse {
	result := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		result = append(result, toMessageResponse(&msgs[i]))
	}
	return result
}

func toStudentProfileResponse(p *model.StudentProfile) dto.StudentProfileResponse {
	return dto.StudentProfileResponse{
		ID:              p.ID,
		StudentID:       p.StudentID,
		Department:      p.Department,
		Year:            p.Year,
		Semester:        p.Semester,
		GPA:             p.GPA,
		EnrolledCourses: courseList(p.EnrolledCourses),
		User:            toUserSummary(p.Account),
		CreatedAt:       formatTime(p.CreatedAt),
		UpdatedAt:       formatTime(p.UpdatedAt),
	}
}

func toDoctorProfileResponse(p *model.DoctorProfile) dto.DoctorProfileResponse {
	hours := make([]dto.OfficeHourDTO, 0, len(p.OfficeHours))
	for _, h := range p.OfficeHours {
		hours = append(hours, dto.OfficeHourDTO{Day: h.Day, Start: h.Start, End: h.End, Location: h.Location})
	}
	return dto.DoctorProfileResponse{
		ID:              p.ID,
		DoctorID:        p.DoctorID,
		Department:      p.Department,
		Specialization:  p.Specialization,
		OfficeHours:     hours,
		AssignedCourses: courseList(p.AssignedCourses),
		User:            toUserSummary(p.Account),
		CreatedAt:       formatTime(p.CreatedAt),
		UpdatedAt:       formatTime(p.UpdatedAt),
	}
}
