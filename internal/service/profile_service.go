package service

import (
	"context"
	"errors"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/repository"
	apperr "doc-portal/backend/pkg/errors"
)

var (
	ErrProfileNotFound    = apperr.New(apperr.KindNotFound, "Profile not found")
	ErrProfileExists      = apperr.New(apperr.KindConflict, "Profile already exists for this account")
	ErrStudentIDTaken     = apperr.New(apperr.KindConflict, "Student ID already exists")
	ErrDoctorIDTaken      = apperr.New(apperr.KindConflict, "Doctor ID already exists")
	ErrInvalidOfficeHours = apperr.New(apperr.KindValidation, "Office hour must end after it starts")
)

// ProfileService student and doctor profile maintenance. Course lists on a
// profile are written through to the owning account, which is what the
// authorization checks read.
type ProfileService interface {
	CreateStudentProfile(ctx context.Context, s Student, req *dto.StudentProfileRequest) (*dto.StudentProfileResponse, error)
	GetStudentProfile(ctx context.Context, studentID string) (*dto.StudentProfileResponse, error)
	UpdateStudentProfile(ctx context.Context, p Principal, studentID string, req *dto.UpdateStudentProfileRequest) (*dto.StudentProfileResponse, error)
	DeleteStudentProfile(ctx context.Context, p Principal, studentID string) error
	ListStudents(ctx context.Context, d Doctor) ([]dto.EnrolledStudentResponse, error)

	CreateDoctorProfile(ctx context.Context, d Doctor, req *dto.DoctorProfileRequest) (*dto.DoctorProfileResponse, error)
	GetDoctorProfile(ctx context.Context, doctorID string) (*dto.DoctorProfileResponse, error)
	UpdateDoctorProfile(ctx context.Context, p Principal, doctorID string, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error)
	DeleteDoctorProfile(ctx context.Context, p Principal, doctorID string) error
	// OfficeHoursCalendar renders the doctor's office hours as an iCalendar
	// feed with one weekly recurring event per slot.
	OfficeHoursCalendar(ctx context.Context, doctorID string) (string, error)
}

type profileService struct {
	cfg    *config.Config
	repo   *repository.Repository
	relay  *fileRelay
	logger *zap.Logger
	now    func() time.Time
}

// NewProfileService creates a ProfileService.
func NewProfileService(cfg *config.Config, repo *repository.Repository, relay *fileRelay, logger *zap.Logger) ProfileService {
	return &profileService{cfg: cfg, repo: repo, relay: relay, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// Student profiles
// ═══════════════════════════════════════════════════════════

func (s *profileService) CreateStudentProfile(ctx context.Context, st Student, req *dto.StudentProfileRequest) (*dto.StudentProfileResponse, error) {
	account := *st.Account()
	studentID := strings.TrimSpace(req.StudentID)

	if _, err := s.repo.StudentProfile.GetByAccountID(ctx, account.ID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup student profile failed", zap.Error(err))
		return nil, err
	}
	if err := s.checkStudentID(ctx, studentID, ""); err != nil {
		return nil, err
	}

	profile := &model.StudentProfile{
		AccountID:       account.ID,
		StudentID:       studentID,
		Department:      strings.TrimSpace(req.Department),
		Year:            req.Year,
		Semester:        req.Semester,
		GPA:             req.GPA,
		EnrolledCourses: coursesOrDefault(req.EnrolledCourses, account.Courses),
	}
	if profile.Year == 0 {
		profile.Year = 1
	}
	if profile.Semester == 0 {
		profile.Semester = 1
	}
	account.Courses = profile.EnrolledCourses

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.StudentProfile.Create(ctx, profile); err != nil {
			return err
		}
		return tx.Account.Update(ctx, &account)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStudentIDTaken
		}
		s.logger.Error("create student profile failed", zap.Error(err))
		return nil, err
	}

	profile.Account = &account
	resp := toStudentProfileResponse(profile)
	return &resp, nil
}

func (s *profileService) GetStudentProfile(ctx context.Context, studentID string) (*dto.StudentProfileResponse, error) {
	profile, err := s.repo.StudentProfile.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("load student profile failed", zap.Error(err))
		return nil, err
	}
	resp := toStudentProfileResponse(profile)
	return &resp, nil
}

func (s *profileService) UpdateStudentProfile(ctx context.Context, p Principal, studentID string, req *dto.UpdateStudentProfileRequest) (*dto.StudentProfileResponse, error) {
	profile, err := s.ownedStudentProfile(ctx, p, studentID)
	if err != nil {
		return nil, err
	}
	account := *p.Account()

	if req.StudentID != nil {
		next := strings.TrimSpace(*req.StudentID)
		if next != profile.StudentID {
			if err := s.checkStudentID(ctx, next, profile.ID); err != nil {
				return nil, err
			}
			profile.StudentID = next
		}
	}
	if req.Department != nil {
		profile.Department = strings.TrimSpace(*req.Department)
	}
	if req.Year != nil {
		profile.Year = *req.Year
	}
	if req.Semester != nil {
		profile.Semester = *req.Semester
	}
	if req.GPA != nil {
		profile.GPA = req.GPA
	}
	coursesChanged := req.EnrolledCourses != nil
	if coursesChanged {
		profile.EnrolledCourses = model.NormalizeCourses(*req.EnrolledCourses)
		account.Courses = profile.EnrolledCourses
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.StudentProfile.Update(ctx, profile); err != nil {
			return err
		}
		if coursesChanged {
			return tx.Account.Update(ctx, &account)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStudentIDTaken
		}
		s.logger.Error("update student profile failed", zap.Error(err))
		return nil, err
	}

	profile.Account = &account
	resp := toStudentProfileResponse(profile)
	return &resp, nil
}

// DeleteStudentProfile removes the profile, the account and everything the
// account owns, then discards the account's blobs.
func (s *profileService) DeleteStudentProfile(ctx context.Context, p Principal, studentID string) error {
	profile, err := s.ownedStudentProfile(ctx, p, studentID)
	if err != nil {
		return err
	}
	account := p.Account()

	docs, err := s.repo.Document.List(ctx, repository.DocumentFilter{OwnerID: account.ID})
	if err != nil {
		s.logger.Error("list documents for delete failed", zap.Error(err))
		return err
	}
	keys := []string{keyOf(account.ProfilePictureKey)}
	for i := range docs {
		keys = append(keys, keyOf(docs[i].FileKey))
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.StudentProfile.Delete(ctx, profile.ID); err != nil {
			return err
		}
		return tx.Account.Delete(ctx, account.ID)
	})
	if err != nil {
		s.logger.Error("delete student profile failed", zap.Error(err))
		return err
	}

	for _, key := range keys {
		s.relay.discard(ctx, key)
	}
	s.logger.Info("student account deleted", zap.String("account_id", account.ID))
	return nil
}

// ListStudents returns students enrolled in any of the doctor's courses.
func (s *profileService) ListStudents(ctx context.Context, d Doctor) ([]dto.EnrolledStudentResponse, error) {
	result := []dto.EnrolledStudentResponse{}
	if len(d.Courses()) == 0 {
		return result, nil
	}

	students, err := s.repo.Account.ListStudentsInCourses(ctx, d.Courses())
	if err != nil {
		s.logger.Error("list enrolled students failed", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(students))
	for i := range students {
		ids = append(ids, students[i].ID)
	}
	profiles, err := s.repo.StudentProfile.ListByAccountIDs(ctx, ids)
	if err != nil {
		s.logger.Error("list student profiles failed", zap.Error(err))
		return nil, err
	}
	externalIDs := make(map[string]string, len(profiles))
	for _, p := range profiles {
		externalIDs[p.AccountID] = p.StudentID
	}

	for i := range students {
		a := &students[i]
		item := dto.EnrolledStudentResponse{
			UserSummary: *toUserSummary(a),
			Email:       a.Email,
			Courses:     courseList(a.Courses),
		}
		if sid, ok := externalIDs[a.ID]; ok {
			item.StudentID = strPtr(sid)
		}
		result = append(result, item)
	}
	return result, nil
}

// ownedStudentProfile resolves a profile the caller owns. Missing and
// foreign profiles are indistinguishable.
func (s *profileService) ownedStudentProfile(ctx context.Context, p Principal, studentID string) (*model.StudentProfile, error) {
	profile, err := s.repo.StudentProfile.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("load student profile failed", zap.Error(err))
		return nil, err
	}
	if profile.AccountID != p.Account().ID {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *profileService) checkStudentID(ctx context.Context, studentID, selfID string) error {
	existing, err := s.repo.StudentProfile.GetByStudentID(ctx, studentID)
	if err == nil && existing.ID != selfID {
		return ErrStudentIDTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup student id failed", zap.Error(err))
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// Doctor profiles
// ═══════════════════════════════════════════════════════════

func (s *profileService) CreateDoctorProfile(ctx context.Context, d Doctor, req *dto.DoctorProfileRequest) (*dto.DoctorProfileResponse, error) {
	account := *d.Account()
	doctorID := strings.TrimSpace(req.DoctorID)

	if _, err := s.repo.DoctorProfile.GetByAccountID(ctx, account.ID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup doctor profile failed", zap.Error(err))
		return nil, err
	}
	if err := s.checkDoctorID(ctx, doctorID, ""); err != nil {
		return nil, err
	}
	hours, err := toOfficeHours(req.OfficeHours)
	if err != nil {
		return nil, err
	}

	profile := &model.DoctorProfile{
		AccountID:       account.ID,
		DoctorID:        doctorID,
		Department:      strings.TrimSpace(req.Department),
		Specialization:  strings.TrimSpace(req.Specialization),
		OfficeHours:     hours,
		AssignedCourses: coursesOrDefault(req.AssignedCourses, account.Courses),
	}
	account.Courses = profile.AssignedCourses

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.DoctorProfile.Create(ctx, profile); err != nil {
			return err
		}
		return tx.Account.Update(ctx, &account)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDoctorIDTaken
		}
		s.logger.Error("create doctor profile failed", zap.Error(err))
		return nil, err
	}

	profile.Account = &account
	resp := toDoctorProfileResponse(profile)
	return &resp, nil
}

func (s *profileService) GetDoctorProfile(ctx context.Context, doctorID string) (*dto.DoctorProfileResponse, error) {
	profile, err := s.loadDoctorProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	resp := toDoctorProfileResponse(profile)
	return &resp, nil
}

func (s *profileService) UpdateDoctorProfile(ctx context.Context, p Principal, doctorID string, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error) {
	profile, err := s.loadDoctorProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if profile.AccountID != p.Account().ID {
		return nil, ErrProfileNotFound
	}
	account := *p.Account()

	if req.DoctorID != nil {
		next := strings.TrimSpace(*req.DoctorID)
		if next != profile.DoctorID {
			if err := s.checkDoctorID(ctx, next, profile.ID); err != nil {
				return nil, err
			}
			profile.DoctorID = next
		}
	}
	if req.Department != nil {
		profile.Department = strings.TrimSpace(*req.Department)
	}
	if req.Specialization != nil {
		profile.Specialization = strings.TrimSpace(*req.Specialization)
	}
	if req.OfficeHours != nil {
		hours, err := toOfficeHours(*req.OfficeHours)
		if err != nil {
			return nil, err
		}
		profile.OfficeHours = hours
	}
	coursesChanged := req.AssignedCourses != nil
	if coursesChanged {
		profile.AssignedCourses = model.NormalizeCourses(*req.AssignedCourses)
		account.Courses = profile.AssignedCourses
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.DoctorProfile.Update(ctx, profile); err != nil {
			return err
		}
		if coursesChanged {
			return tx.Account.Update(ctx, &account)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDoctorIDTaken
		}
		s.logger.Error("update doctor profile failed", zap.Error(err))
		return nil, err
	}

	profile.Account = &account
	resp := toDoctorProfileResponse(profile)
	return &resp, nil
}

func (s *profileService) DeleteDoctorProfile(ctx context.Context, p Principal, doctorID string) error {
	profile, err := s.loadDoctorProfile(ctx, doctorID)
	if err != nil {
		return err
	}
	account := p.Account()
	if profile.AccountID != account.ID {
		return ErrProfileNotFound
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.DoctorProfile.Delete(ctx, profile.ID); err != nil {
			return err
		}
		return tx.Account.Delete(ctx, account.ID)
	})
	if err != nil {
		s.logger.Error("delete doctor profile failed", zap.Error(err))
		return err
	}

	s.relay.discard(ctx, keyOf(account.ProfilePictureKey))
	s.logger.Info("doctor account deleted", zap.String("account_id", account.ID))
	return nil
}

func (s *profileService) loadDoctorProfile(ctx context.Context, doctorID string) (*model.DoctorProfile, error) {
	profile, err := s.repo.DoctorProfile.GetByDoctorID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("load doctor profile failed", zap.Error(err))
		return nil, err
	}
	return profile, nil
}

func (s *profileService) checkDoctorID(ctx context.Context, doctorID, selfID string) error {
	existing, err := s.repo.DoctorProfile.GetByDoctorID(ctx, doctorID)
	if err == nil && existing.ID != selfID {
		return ErrDoctorIDTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup doctor id failed", zap.Error(err))
		return err
	}
	return nil
}

func toOfficeHours(in []dto.OfficeHourDTO) (datatypes.JSONSlice[model.OfficeHour], error) {
	hours := make(datatypes.JSONSlice[model.OfficeHour], 0, len(in))
	for _, h := range in {
		start, err := time.Parse(clockLayout, h.Start)
		if err != nil {
			return nil, ErrInvalidOfficeHours
		}
		end, err := time.Parse(clockLayout, h.End)
		if err != nil || !end.After(start) {
			return nil, ErrInvalidOfficeHours
		}
		hours = append(hours, model.OfficeHour{
			Day:      h.Day,
			Start:    h.Start,
			End:      h.End,
			Location: strings.TrimSpace(h.Location),
		})
	}
	return hours, nil
}

// ═══════════════════════════════════════════════════════════
// Office hours calendar
// ═══════════════════════════════════════════════════════════

const clockLayout = "15:04"

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func (s *profileService) OfficeHoursCalendar(ctx context.Context, doctorID string) (string, error) {
	profile, err := s.loadDoctorProfile(ctx, doctorID)
	if err != nil {
		return "", err
	}

	loc := s.cfg.Server.Location()
	now := s.now().In(loc)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//doc-portal//office-hours//EN")
	cal.SetXWRTimezone(loc.String())
	if profile.Account != nil {
		cal.SetName("Office hours: " + profile.Account.FullName())
	}

	for i, h := range profile.OfficeHours {
		start, end, ok := nextOccurrence(now, h)
		if !ok {
			s.logger.Warn("skip malformed office hour",
				zap.String("doctor_id", doctorID), zap.Int("slot", i))
			continue
		}

		event := cal.AddEvent(profile.ID + "-" + strings.ToLower(h.Day) + "-" + h.Start + "@doc-portal")
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary("Office hours")
		if h.Location != "" {
			event.SetLocation(h.Location)
		}
		event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
	}

	return cal.Serialize(), nil
}

// nextOccurrence returns the first start/end of slot h on or after now's date.
func nextOccurrence(now time.Time, h model.OfficeHour) (time.Time, time.Time, bool) {
	day, ok := weekdays[h.Day]
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(clockLayout, h.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(clockLayout, h.End)
	if err != nil || !end.After(start) {
		return time.Time{}, time.Time{}, false
	}

	offset := (int(day) - int(now.Weekday()) + 7) % 7
	date := now.AddDate(0, 0, offset)
	at := func(t time.Time) time.Time {
		return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	}
	return at(start), at(end), true
}

// coursesOrDefault normalises an explicit course list, or keeps the account's
// registered courses when the request carries none.
func coursesOrDefault(requested *[]string, registered []string) pq.StringArray {
	if requested == nil {
		return model.NormalizeCourses(registered)
	}
	return model.NormalizeCourses(*requested)
}
