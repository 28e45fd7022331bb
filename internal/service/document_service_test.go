package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/model"
	apperr "doc-portal/backend/pkg/errors"
)

func docReq(title, course string) *dto.DocumentRequest {
	return &dto.DocumentRequest{Title: title, Type: "homework", Course: course}
}

// ── create ──

// register → draft without file → submit
func TestDocumentLifecycle_DraftThenSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	auth, err := env.svc.Auth.Register(ctx, registerReq("s1", "student", "CS101"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, err := env.svc.Auth.Verify(ctx, auth.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	st, err := AsStudent(session.Principal)
	if err != nil {
		t.Fatalf("expected student: %v", err)
	}

	draft, err := env.svc.Document.SaveAsDraft(ctx, st, docReq("HW1", "CS101"), nil)
	if err != nil {
		t.Fatalf("SaveAsDraft failed: %v", err)
	}
	if draft.Status != string(model.StatusDraft) {
		t.Errorf("expected draft, got %s", draft.Status)
	}
	if draft.File != nil {
		t.Errorf("expected no file, got %v", *draft.File)
	}

	submitted, err := env.svc.Document.SubmitDraft(ctx, st, draft.ID)
	if err != nil {
		t.Fatalf("SubmitDraft failed: %v", err)
	}
	if submitted.Status != string(model.StatusSubmitted) {
		t.Errorf("expected submitted, got %s", submitted.Status)
	}

	// a submitted document is no longer a draft
	if _, err := env.svc.Document.SubmitDraft(ctx, st, draft.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound on second submit, got %v", err)
	}
}

func TestUploadDocument_RequiresFile(t *testing.T) {
	env := newTestEnv(t)
	st := env.seedStudent(t, "s1", "CS101")

	_, err := env.svc.Document.UploadDocument(context.Background(), st, docReq("HW1", "CS101"), nil)
	if !errors.Is(err, ErrFileRequired) {
		t.Errorf("expected ErrFileRequired, got %v", err)
	}
}

func TestUploadDocument_StoresFileAndCleansTemp(t *testing.T) {
	env := newTestEnv(t)
	st := env.seedStudent(t, "s1", "CS101")

	doc, err := env.svc.Document.UploadDocument(context.Background(), st, docReq("HW1", "CS101"), pdfFile("hw1.pdf"))
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if doc.Status != string(model.StatusSubmitted) {
		t.Errorf("expected submitted, got %s", doc.Status)
	}
	if doc.File == nil || !env.store.has(*doc.File) {
		t.Fatal("file should be stored")
	}
	if doc.FileName == nil || *doc.FileName != "hw1.pdf" {
		t.Errorf("expected original file name, got %v", doc.FileName)
	}
	env.assertTempDirEmpty(t)
}

func TestUploadDocument_BlobFailureLeavesNoRecord(t *testing.T) {
	env := newTestEnv(t)
	st := env.seedStudent(t, "s1", "CS101")
	env.store.failPut = true

	_, err := env.svc.Document.UploadDocument(context.Background(), st, docReq("HW1", "CS101"), pdfFile("hw1.pdf"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindUploadFailed {
		t.Errorf("expected upload_failed kind, got %v", apperr.KindOf(err))
	}
	if len(env.docs.docs) != 0 {
		t.Errorf("no document should be stored, found %d", len(env.docs.docs))
	}
	env.assertTempDirEmpty(t)
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	st := env.seedStudent(t, "s1", "CS101")

	tests := []struct {
		name string
		req  *dto.DocumentRequest
		want error
	}{
		{"blank title", docReq("  ", "CS101"), ErrTitleRequired},
		{"blank course", docReq("HW1", " "), ErrCourseRequired},
		{"bad type", &dto.DocumentRequest{Title: "HW1", Type: "essay", Course: "CS101"}, ErrInvalidDocumentType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Document.SaveAsDraft(context.Background(), st, tt.req, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// ── ownership ──

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedStudent(t, "s1", "CS101")
	other := env.seedStudent(t, "s2", "CS101")

	draft, err := env.svc.Document.SaveAsDraft(ctx, owner, docReq("HW1", "CS101"), nil)
	if err != nil {
		t.Fatalf("SaveAsDraft failed: %v", err)
	}

	title := "stolen"
	checks := map[string]func() error{
		"get": func() error {
			_, err := env.svc.Document.GetDocument(ctx, other, draft.ID)
			return err
		},
		"update": func() error {
			_, err := env.svc.Document.UpdateDraft(ctx, other, draft.ID, &dto.UpdateDraftRequest{Title: &title}, nil)
			return err
		},
		"submit": func() error {
			_, err := env.svc.Document.SubmitDraft(ctx, other, draft.ID)
			return err
		},
		"delete": func() error {
			return env.svc.Document.DeleteDocument(ctx, other, draft.ID)
		},
	}
	for name, fn := range checks {
		if err := fn(); !errors.Is(err, ErrDocumentNotFound) {
			t.Errorf("%s: expected ErrDocumentNotFound, got %v", name, err)
		}
	}

	list, _ := env.svc.Document.GetUserDocuments(ctx, other, nil)
	if len(list) != 0 {
		t.Errorf("other student should see no documents, got %d", len(list))
	}
	stored, _ := env.docs.GetByID(ctx, draft.ID)
	if stored.Title != "HW1" || stored.Status != model.StatusDraft {
		t.Errorf("document must be untouched, got %+v", stored)
	}
}

func TestGetDocument_MalformedID(t *testing.T) {
	env := newTestEnv(t)
	st := env.seedStudent(t, "s1")

	if _, err := env.svc.Document.GetDocument(context.Background(), st, "not-a-uuid"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGetUserDocuments_Filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101", "MA201")

	_, _ = env.svc.Document.SaveAsDraft(ctx, st, docReq("d1", "CS101"), nil)
	_, _ = env.svc.Document.UploadDocument(ctx, st, docReq("u1", "MA201"), pdfFile("a.pdf"))
	_, _ = env.svc.Document.UploadDocument(ctx, st, docReq("u2", "CS101"), pdfFile("b.pdf"))

	all, _ := env.svc.Document.GetUserDocuments(ctx, st, nil)
	if len(all) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(all))
	}
	if all[0].Title != "u2" {
		t.Errorf("expected newest first, got %s", all[0].Title)
	}

	cs, _ := env.svc.Document.GetUserDocuments(ctx, st, &dto.DocumentListQuery{Course: "CS101", Status: "submitted"})
	if len(cs) != 1 || cs[0].Title != "u2" {
		t.Errorf("expected only u2, got %+v", cs)
	}

	drafts, _ := env.svc.Document.GetDraftDocuments(ctx, st)
	if len(drafts) != 1 || drafts[0].Title != "d1" {
		t.Errorf("expected only d1 draft, got %+v", drafts)
	}
}

// ── UpdateDraft ──

func TestUpdateDraft_ReplacesFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101")

	draft, _ := env.svc.Document.SaveAsDraft(ctx, st, docReq("HW1", "CS101"), pdfFile("v1.pdf"))
	oldURL := *draft.File

	title := "HW1 final"
	updated, err := env.svc.Document.UpdateDraft(ctx, st, draft.ID, &dto.UpdateDraftRequest{Title: &title}, pdfFile("v2.pdf"))
	if err != nil {
		t.Fatalf("UpdateDraft failed: %v", err)
	}
	if updated.Title != "HW1 final" {
		t.Errorf("expected new title, got %s", updated.Title)
	}
	if env.store.has(oldURL) {
		t.Error("old file should be deleted")
	}
	if !env.store.has(*updated.File) {
		t.Error("new file should be stored")
	}
	env.assertTempDirEmpty(t)
}

func TestUpdateDraft_PersistFailureIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101")

	draft, _ := env.svc.Document.SaveAsDraft(ctx, st, docReq("HW1", "CS101"), pdfFile("v1.pdf"))
	env.docs.updateErr = errors.New("db down")

	title := "changed"
	if _, err := env.svc.Document.UpdateDraft(ctx, st, draft.ID, &dto.UpdateDraftRequest{Title: &title}, pdfFile("v2.pdf")); err == nil {
		t.Fatal("expected error")
	}

	stored, _ := env.docs.GetByID(ctx, draft.ID)
	if stored.Title != "HW1" || *stored.FileURL != *draft.File {
		t.Errorf("stored draft must be unchanged, got %+v", stored)
	}
	if !env.store.has(*draft.File) {
		t.Error("old file must survive a failed update")
	}
	if len(env.store.objects) != 1 {
		t.Errorf("new blob must be compensated, store has %d objects", len(env.store.objects))
	}
	env.assertTempDirEmpty(t)
}

func TestUpdateDraft_BlobFailureKeepsRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101")

	draft, _ := env.svc.Document.SaveAsDraft(ctx, st, docReq("HW1", "CS101"), nil)
	env.store.failPut = true

	title := "changed"
	_, err := env.svc.Document.UpdateDraft(ctx, st, draft.ID, &dto.UpdateDraftRequest{Title: &title}, pdfFile("v2.pdf"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	stored, _ := env.docs.GetByID(ctx, draft.ID)
	if stored.Title != "HW1" {
		t.Errorf("title must not be persisted, got %s", stored.Title)
	}
	env.assertTempDirEmpty(t)
}

// Two updates on the same draft: the later write wins as a whole.
func TestUpdateDraft_LastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101")

	draft, _ := env.svc.Document.SaveAsDraft(ctx, st, docReq("HW1", "CS101"), pdfFile("v1.pdf"))

	title := "retitled"
	if _, err := env.svc.Document.UpdateDraft(ctx, st, draft.ID, &dto.UpdateDraftRequest{Title: &title}, nil); err != nil {
		t.Fatalf("title update failed: %v", err)
	}
	last, err := env.svc.Document.UpdateDraft(ctx, st, draft.ID, nil, pdfFile("v2.pdf"))
	if err != nil {
		t.Fatalf("file update failed: %v", err)
	}

	stored, _ := env.docs.GetByID(ctx, draft.ID)
	if stored.Title != last.Title || *stored.FileURL != *last.File {
		t.Errorf("stored state should equal the last write, got %+v", stored)
	}
}

func TestUpdateDraft_OnlyDrafts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101")

	doc, _ := env.svc.Document.UploadDocument(ctx, st, docReq("HW1", "CS101"), pdfFile("a.pdf"))
	title := "late edit"
	_, err := env.svc.Document.UpdateDraft(ctx, st, doc.ID, &dto.UpdateDraftRequest{Title: &title}, nil)
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

// ── DeleteDocument ──

func TestDeleteDocument_RemovesBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101")

	doc, _ := env.svc.Document.UploadDocument(ctx, st, docReq("HW1", "CS101"), pdfFile("a.pdf"))
	if err := env.svc.Document.DeleteDocument(ctx, st, doc.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if env.store.has(*doc.File) {
		t.Error("blob should be removed")
	}
	if _, err := env.svc.Document.GetDocument(ctx, st, doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound after delete, got %v", err)
	}
}

// ── review ──

func TestReview_CourseScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101")
	outsider := env.seedDoctor(t, "d2", "MATH201")
	lecturer := env.seedDoctor(t, "d3", "CS101")

	doc, _ := env.svc.Document.UploadDocument(ctx, st, docReq("HW1", "CS101"), pdfFile("a.pdf"))

	_, err := env.svc.Document.ApproveDocument(ctx, outsider, doc.ID)
	if !errors.Is(err, ErrNotCourseDoctor) {
		t.Fatalf("expected ErrNotCourseDoctor, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("expected forbidden kind, got %v", apperr.KindOf(err))
	}

	approved, err := env.svc.Document.ApproveDocument(ctx, lecturer, doc.ID)
	if err != nil {
		t.Fatalf("ApproveDocument failed: %v", err)
	}
	if approved.Status != string(model.StatusApproved) {
		t.Errorf("expected approved, got %s", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != lecturer.Account().ID {
		t.Error("reviewer should be recorded")
	}
	if approved.ReviewedAt == nil {
		t.Error("review time should be recorded")
	}
}

func TestReview_StateGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	st := env.seedStudent(t, "s1", "CS101")
	d := env.seedDoctor(t, "d1", "CS101")

	draft, _ := env.svc.Document.SaveAsDraft(ctx, st, docReq("HW1", "CS101"), nil)
	if _, err := env.svc.Document.RejectDocument(ctx, d, draft.ID); !errors.Is(err, ErrDocumentNotSubmitted) {
		t.Errorf("expected ErrDocumentNotSubmitted, got %v", err)
	}
	if _, err := env.svc.Document.ApproveDocument(ctx, d, uuid.NewString()); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestReview_ReReviewPolicy(t *testing.T) {
	tests := []struct {
		name  string
		allow bool
		want  error
	}{
		{"allowed", true, nil},
		{"blocked", false, ErrAlreadyReviewed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.cfg.Review.AllowReReview = tt.allow
			ctx := context.Background()
			st := env.seedStudent(t, "s1", "CS101")
			d := env.seedDoctor(t, "d1", "CS101")

			doc, _ := env.svc.Document.UploadDocument(ctx, st, docReq("HW1", "CS101"), pdfFile("a.pdf"))
			if _, err := env.svc.Document.ApproveDocument(ctx, d, doc.ID); err != nil {
				t.Fatalf("first review failed: %v", err)
			}

			resp, err := env.svc.Document.RejectDocument(ctx, d, doc.ID)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want == nil && resp.Status != string(model.StatusRejected) {
				t.Errorf("expected rejected, got %s", resp.Status)
			}
		})
	}
}
