package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/repository"
	"doc-portal/backend/pkg/jwt"
)

// clock hands out strictly increasing timestamps so "newest first" is deterministic.
type clock struct {
	t time.Time
}

func (c *clock) next() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// ── Mock AccountRepository ──

type mockAccountRepo struct {
	clock    *clock
	accounts map[string]model.Account
	onDelete func(id string)
	// beforeCreate runs once ahead of the next Create, to stage a concurrent insert.
	beforeCreate func()
}

func newMockAccountRepo(c *clock) *mockAccountRepo {
	return &mockAccountRepo{clock: c, accounts: make(map[string]model.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account *model.Account) error {
	if hook := m.beforeCreate; hook != nil {
		m.beforeCreate = nil
		hook()
	}
	for _, a := range m.accounts {
		if a.UserID == account.UserID || a.Email == account.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Courses == nil {
		account.Courses = model.NormalizeCourses(nil)
	}
	now := m.clock.next()
	account.CreatedAt, account.UpdatedAt = now, now
	m.accounts[account.ID] = *account
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (*model.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return &a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByUserID(_ context.Context, userID string) (*model.Account, error) {
	for _, a := range m.accounts {
		if a.UserID == userID {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) Update(_ context.Context, account *model.Account) error {
	for _, a := range m.accounts {
		if a.ID != account.ID && (a.UserID == account.UserID || a.Email == account.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	account.UpdatedAt = m.clock.next()
	m.accounts[account.ID] = *account
	return nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id string) error {
	delete(m.accounts, id)
	if m.onDelete != nil {
		m.onDelete(id)
	}
	return nil
}

func (m *mockAccountRepo) ListByRole(_ context.Context, role model.Role) ([]model.Account, error) {
	var result []model.Account
	for _, a := range m.accounts {
		if a.Role == role {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockAccountRepo) ListStudentsInCourses(_ context.Context, courses []string) ([]model.Account, error) {
	var result []model.Account
	for _, a := range m.accounts {
		if a.Role == model.RoleStudent && overlaps(a.Courses, courses) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockAccountRepo) CountStudentsInCourses(ctx context.Context, courses []string) (int64, error) {
	list, _ := m.ListStudentsInCourses(ctx, courses)
	return int64(len(list)), nil
}

func (m *mockAccountRepo) ref(id string) *model.Account {
	if a, ok := m.accounts[id]; ok {
		return &a
	}
	return nil
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if model.ContainsCourse(b, x) {
			return true
		}
	}
	return false
}

// ── Mock StudentProfileRepository ──

type mockStudentProfileRepo struct {
	clock    *clock
	accounts *mockAccountRepo
	profiles map[string]model.StudentProfile
}

func newMockStudentProfileRepo(c *clock, accounts *mockAccountRepo) *mockStudentProfileRepo {
	return &mockStudentProfileRepo{clock: c, accounts: accounts, profiles: make(map[string]model.StudentProfile)}
}

func (m *mockStudentProfileRepo) Create(_ context.Context, profile *model.StudentProfile) error {
	for _, p := range m.profiles {
		if p.AccountID == profile.AccountID || p.StudentID == profile.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := m.clock.next()
	profile.CreatedAt, profile.UpdatedAt = now, now
	stored := *profile
	stored.Account = nil
	m.profiles[profile.ID] = stored
	return nil
}

func (m *mockStudentProfileRepo) find(match func(p model.StudentProfile) bool) (*model.StudentProfile, error) {
	for _, p := range m.profiles {
		if match(p) {
			p.Account = m.accounts.ref(p.AccountID)
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) GetByStudentID(_ context.Context, studentID string) (*model.StudentProfile, error) {
	return m.find(func(p model.StudentProfile) bool { return p.StudentID == studentID })
}

func (m *mockStudentProfileRepo) GetByAccountID(_ context.Context, accountID string) (*model.StudentProfile, error) {
	return m.find(func(p model.StudentProfile) bool { return p.AccountID == accountID })
}

func (m *mockStudentProfileRepo) ListByAccountIDs(_ context.Context, accountIDs []string) ([]model.StudentProfile, error) {
	var result []model.StudentProfile
	for _, p := range m.profiles {
		if model.ContainsCourse(accountIDs, p.AccountID) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockStudentProfileRepo) Update(_ context.Context, profile *model.StudentProfile) error {
	for _, p := range m.profiles {
		if p.ID != profile.ID && p.StudentID == profile.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	profile.UpdatedAt = m.clock.next()
	stored := *profile
	stored.Account = nil
	m.profiles[profile.ID] = stored
	return nil
}

func (m *mockStudentProfileRepo) Delete(_ context.Context, id string) error {
	delete(m.profiles, id)
	return nil
}

// ── Mock DoctorProfileRepository ──

type mockDoctorProfileRepo struct {
	clock    *clock
	accounts *mockAccountRepo
	profiles map[string]model.DoctorProfile
}

func newMockDoctorProfileRepo(c *clock, accounts *mockAccountRepo) *mockDoctorProfileRepo {
	return &mockDoctorProfileRepo{clock: c, accounts: accounts, profiles: make(map[string]model.DoctorProfile)}
}

func (m *mockDoctorProfileRepo) Create(_ context.Context, profile *model.DoctorProfile) error {
	for _, p := range m.profiles {
		if p.AccountID == profile.AccountID || p.DoctorID == profile.DoctorID {
			return gorm.ErrDuplicatedKey
		}
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := m.clock.next()
	profile.CreatedAt, profile.UpdatedAt = now, now
	stored := *profile
	stored.Account = nil
	m.profiles[profile.ID] = stored
	return nil
}

func (m *mockDoctorProfileRepo) find(match func(p model.DoctorProfile) bool) (*model.DoctorProfile, error) {
	for _, p := range m.profiles {
		if match(p) {
			p.Account = m.accounts.ref(p.AccountID)
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDoctorProfileRepo) GetByDoctorID(_ context.Context, doctorID string) (*model.DoctorProfile, error) {
	return m.find(func(p model.DoctorProfile) bool { return p.DoctorID == doctorID })
}

func (m *mockDoctorProfileRepo) GetByAccountID(_ context.Context, accountID string) (*model.DoctorProfile, error) {
	return m.find(func(p model.DoctorProfile) bool { return p.AccountID == accountID })
}

func (m *mockDoctorProfileRepo) Update(_ context.Context, profile *model.DoctorProfile) error {
	for _, p := range m.profiles {
		if p.ID != profile.ID && p.DoctorID == profile.DoctorID {
			return gorm.ErrDuplicatedKey
		}
	}
	profile.UpdatedAt = m.clock.next()
	stored := *profile
	stored.Account = nil
	m.profiles[profile.ID] = stored
	return nil
}

func (m *mockDoctorProfileRepo) Delete(_ context.Context, id string) error {
	delete(m.profiles, id)
	return nil
}

// ── Mock DocumentRepository ──

type mockDocumentRepo struct {
	clock     *clock
	accounts  *mockAccountRepo
	docs      map[string]model.Document
	updateErr error
}

func newMockDocumentRepo(c *clock, accounts *mockAccountRepo) *mockDocumentRepo {
	return &mockDocumentRepo{clock: c, accounts: accounts, docs: make(map[string]model.Document)}
}

func (m *mockDocumentRepo) Create(_ context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := m.clock.next()
	doc.CreatedAt, doc.UpdatedAt = now, now
	stored := *doc
	stored.Owner, stored.Reviewer = nil, nil
	m.docs[doc.ID] = stored
	return nil
}

func (m *mockDocumentRepo) Update(_ context.Context, doc *model.Document) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.docs[doc.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	doc.UpdatedAt = m.clock.next()
	stored := *doc
	stored.Owner, stored.Reviewer = nil, nil
	m.docs[doc.ID] = stored
	return nil
}

func (m *mockDocumentRepo) Delete(_ context.Context, id string) error {
	delete(m.docs, id)
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id string) (*model.Document, error) {
	if d, ok := m.docs[id]; ok {
		return &d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) FindOne(ctx context.Context, f repository.DocumentFilter) (*model.Document, error) {
	f.Limit = 1
	list, _ := m.List(ctx, f)
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (m *mockDocumentRepo) List(_ context.Context, f repository.DocumentFilter) ([]model.Document, error) {
	var result []model.Document
	for _, d := range m.docs {
		if !matchDocument(d, f) {
			continue
		}
		if f.WithOwner {
			d.Owner = m.accounts.ref(d.OwnerID)
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

func matchDocument(d model.Document, f repository.DocumentFilter) bool {
	if f.ID != "" && d.ID != f.ID {
		return false
	}
	if f.OwnerID != "" && d.OwnerID != f.OwnerID {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			ok = ok || d.Status == s
		}
		if !ok {
			return false
		}
	}
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.Course != "" && d.Course != f.Course {
		return false
	}
	if f.Courses != nil && !model.ContainsCourse(f.Courses, d.Course) {
		return false
	}
	return true
}

func (m *mockDocumentRepo) CountByCourseStatus(_ context.Context, courses []string) ([]repository.CourseStatusCount, error) {
	type key struct {
		course string
		status model.DocumentStatus
	}
	counts := make(map[key]int64)
	for _, d := range m.docs {
		if model.ContainsCourse(courses, d.Course) {
			counts[key{d.Course, d.Status}]++
		}
	}
	var result []repository.CourseStatusCount
	for k, n := range counts {
		result = append(result, repository.CourseStatusCount{Course: k.course, Status: k.status, Count: n})
	}
	return result, nil
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	clock    *clock
	accounts *mockAccountRepo
	msgs     map[string]model.Message
}

func newMockMessageRepo(c *clock, accounts *mockAccountRepo) *mockMessageRepo {
	return &mockMessageRepo{clock: c, accounts: accounts, msgs: make(map[string]model.Message)}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = m.clock.next()
	stored := *msg
	stored.From, stored.To = nil, nil
	m.msgs[msg.ID] = stored
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id string) (*model.Message, error) {
	if msg, ok := m.msgs[id]; ok {
		return &msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) ListByRecipient(_ context.Context, accountID string) ([]model.Message, error) {
	var result []model.Message
	for _, msg := range m.msgs {
		if msg.ToID == accountID {
			msg.From = m.accounts.ref(msg.FromID)
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockMessageRepo) ListConversation(_ context.Context, a, b string) ([]model.Message, error) {
	var result []model.Message
	for _, msg := range m.msgs {
		if (msg.FromID == a && msg.ToID == b) || (msg.FromID == b && msg.ToID == a) {
			msg.From = m.accounts.ref(msg.FromID)
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ── Mock BlobStore ──

type mockBlobStore struct {
	objects map[string][]byte
	failPut bool
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string][]byte)}
}

func (m *mockBlobStore) Put(_ context.Context, key string, r io.Reader, _ string) error {
	if m.failPut {
		return errors.New("blob store unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *mockBlobStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *mockBlobStore) URL(key string) string {
	return "https://files.test/" + key
}

func (m *mockBlobStore) has(url string) bool {
	_, ok := m.objects[strings.TrimPrefix(url, "https://files.test/")]
	return ok
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── test environment ──

type testEnv struct {
	cfg       *config.Config
	accounts  *mockAccountRepo
	students  *mockStudentProfileRepo
	doctors   *mockDoctorProfileRepo
	docs      *mockDocumentRepo
	msgs      *mockMessageRepo
	store     *mockBlobStore
	blacklist *mockBlacklist
	tempDir   string
	svc       *Service
}

func testConfig(tempDir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 5000, TempDir: tempDir, Timezone: "UTC"},
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret-0123456789",
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		Storage: config.StorageConfig{Type: "local"},
		Upload: config.UploadConfig{
			MaxDocumentSize: 5 << 20,
			MaxPictureSize:  2 << 20,
			PictureTypes:    []string{"image/jpeg", "image/png", "image/gif"},
		},
		Review: config.ReviewConfig{AllowReReview: true},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	accounts := newMockAccountRepo(c)
	env := &testEnv{
		accounts:  accounts,
		students:  newMockStudentProfileRepo(c, accounts),
		doctors:   newMockDoctorProfileRepo(c, accounts),
		docs:      newMockDocumentRepo(c, accounts),
		msgs:      newMockMessageRepo(c, accounts),
		store:     newMockBlobStore(),
		blacklist: newMockBlacklist(),
		tempDir:   t.TempDir(),
	}
	env.cfg = testConfig(env.tempDir)

	// accounts own their documents and messages
	accounts.onDelete = func(id string) {
		for k, d := range env.docs.docs {
			if d.OwnerID == id {
				delete(env.docs.docs, k)
			}
		}
		for k, msg := range env.msgs.msgs {
			if msg.Involves(id) {
				delete(env.msgs.msgs, k)
			}
		}
	}

	repo := &repository.Repository{
		Account:        env.accounts,
		StudentProfile: env.students,
		DoctorProfile:  env.doctors,
		Document:       env.docs,
		Message:        env.msgs,
	}
	env.svc = NewService(env.cfg, repo, jwt.NewManager(&env.cfg.Auth), env.blacklist, env.store, nil, zap.NewNop())
	return env
}

// seedAccount stores an account directly and returns it tagged with its role.
func (e *testEnv) seedAccount(t *testing.T, userID string, role model.Role, courses ...string) Principal {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := &model.Account{
		UserID:       userID,
		Email:        userID + "@uni.test",
		PasswordHash: string(hash),
		FirstName:    strings.ToUpper(userID[:1]) + userID[1:],
		LastName:     "Test",
		Role:         role,
		Courses:      model.NormalizeCourses(courses),
	}
	if err := e.accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account %s: %v", userID, err)
	}
	p, err := NewPrincipal(account)
	if err != nil {
		t.Fatalf("principal: %v", err)
	}
	return p
}

func (e *testEnv) seedStudent(t *testing.T, userID string, courses ...string) Student {
	t.Helper()
	st, _ := AsStudent(e.seedAccount(t, userID, model.RoleStudent, courses...))
	return st
}

func (e *testEnv) seedDoctor(t *testing.T, userID string, courses ...string) Doctor {
	t.Helper()
	d, _ := AsDoctor(e.seedAccount(t, userID, model.RoleDoctor, courses...))
	return d
}

// assertTempDirEmpty checks that no staged upload outlived its request.
func (e *testEnv) assertTempDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(e.tempDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty temp dir, found %d entries", len(entries))
	}
}

func pdfFile(name string) *UploadedFile {
	content := []byte("%PDF-1.4 test " + name)
	return &UploadedFile{
		Filename:    name,
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Content:     bytes.NewReader(content),
	}
}
