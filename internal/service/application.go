package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"jobboard/internal/model"
	"jobboard/internal/repository"
	"jobboard/internal/storage"
)

// MaxResumeSize is the largest résumé accepted for upload.
const MaxResumeSize int64 = 10 << 20

var resumeContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/rtf": true,
	"text/plain":      true,
}

// ResumeUpload describes an uploaded résumé file.
type ResumeUpload struct {
	Filename    string
	ContentType string
	// Size is the exact byte count, or -1 if unknown.
	Size int64
}

// ResumeFile is an open résumé object. The caller closes Body.
type ResumeFile struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	// Size is the byte count, or -1 if the store did not report one.
	Size int64
}

// ApplicationService manages candidate applications and their résumés.
type ApplicationService interface {
	Resource[model.Application]

	// ListByJob lists the applications submitted to one job.
	ListByJob(ctx context.Context, jobID string, q repository.Query) (*repository.PageResult[model.Application], error)

	// UploadResume stores a résumé for the application, replacing any previous one.
	// The stored object is removed again if the application cannot be updated.
	UploadResume(ctx context.Context, id string, r io.Reader, in ResumeUpload) (*model.Application, error)

	// ResumeURL returns a time-limited download link for the application's résumé.
	ResumeURL(ctx context.Context, id string) (string, error)

	// OpenResume streams the application's résumé from storage.
	OpenResume(ctx context.Context, id string) (*ResumeFile, error)
}

type applicationService struct {
	applications repository.Repository[model.Application]
	jobs         repository.Repository[model.Job]
	store        storage.Storage
	expiry       time.Duration
	log          *slog.Logger
}

func NewApplicationService(
	applications repository.Repository[model.Application],
	jobs repository.Repository[model.Job],
	store storage.Storage,
	presignExpiry time.Duration,
	log *slog.Logger,
) ApplicationService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &applicationService{
		applications: applications,
		jobs:         jobs,
		store:        store,
		expiry:       presignExpiry,
		log:          log,
	}
}

func (s *applicationService) List(ctx context.Context, q repository.Query) (*repository.PageResult[model.Application], error) {
	return s.applications.GetAll(ctx, q)
}

func (s *applicationService) ListByJob(ctx context.Context, jobID string, q repository.Query) (*repository.PageResult[model.Application], error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, wrapLookup("job", err)
	}
	q.Filters = withFilter(q.Filters, "job_id", jobID)
	return s.applications.GetAll(ctx, q)
}

func (s *applicationService) Get(ctx context.Context, id string) (*model.Application, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	a, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("application", err)
	}
	return a, nil
}

func (s *applicationService) Create(ctx context.Context, in *model.Application) (*model.Application, error) {
	if in == nil {
		return nil, ErrEmptyPayload
	}
	a := *in
	a.Base = model.Base{}
	a.Job = nil
	a.ResumePath = ""
	a.CandidateName = strings.TrimSpace(a.CandidateName)
	a.CandidateEmail = strings.ToLower(strings.TrimSpace(a.CandidateEmail))
	if a.Status == "" {
		a.Status = model.ApplicationSubmitted
	}

	if err := validateStruct(&a); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, a.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("job_id", "job does not exist")
		}
		return nil, err
	}
	if !job.AcceptsApplications() {
		return nil, newValidationError("job_id", "job is not accepting applications")
	}

	n, err := s.applications.Count(ctx, repository.Query{Filters: map[string]string{
		"job_id":          a.JobID,
		"candidate_email": a.CandidateEmail,
	}})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: %s already applied to this job", ErrConflict, a.CandidateEmail)
	}
	return s.applications.Create(ctx, &a)
}

func (s *applicationService) Update(ctx context.Context, id string, patch map[string]any) (*model.Application, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := readOnly(patch, "id", "created_at", "updated_at", "job_id", "resume_path"); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, typed, err := mergePatch(existing, patch)
	if err != nil {
		return nil, err
	}
	if _, ok := typed["candidate_email"]; ok {
		merged.CandidateEmail = strings.ToLower(strings.TrimSpace(merged.CandidateEmail))
		typed["candidate_email"] = merged.CandidateEmail
	}
	if err := validateStruct(merged); err != nil {
		return nil, err
	}
	if final(existing.Status) && merged.Status != existing.Status {
		return nil, newValidationError("status", "application is already "+existing.Status)
	}
	return s.applications.Update(ctx, id, typed)
}

// Delete removes the résumé object first so a failed delete keeps the
// reference in the database.
func (s *applicationService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.ResumePath != "" {
		if err := s.store.Delete(ctx, existing.ResumePath); err != nil {
			return fmt.Errorf("delete resume: %w", err)
		}
	}
	if _, err := s.applications.Delete(ctx, id); err != nil {
		return wrapLookup("application", err)
	}
	return nil
}

func (s *applicationService) UploadResume(ctx context.Context, id string, r io.Reader, in ResumeUpload) (*model.Application, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if err := checkResume(in); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := storage.ResumeKey(id, in.Filename)
	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
			"application-id":    id,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	updated, err := s.applications.Update(ctx, id, map[string]any{"resume_path": key})
	if err != nil {
		// Rollback: the new object is unreferenced.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if old := existing.ResumePath; old != "" && old != key {
		if err := s.store.Delete(ctx, old); err != nil {
			s.log.WarnContext(ctx, "resume_cleanup_failed",
				slog.String("application_id", id),
				slog.String("key", old),
				slog.String("error", err.Error()),
			)
		}
	}
	return updated, nil
}

func (s *applicationService) ResumeURL(ctx context.Context, id string) (string, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if a.ResumePath == "" {
		return "", ErrNoResume
	}
	u, err := s.store.PresignGet(ctx, a.ResumePath, s.expiry)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", ErrNoResume
		}
		return "", fmt.Errorf("presign resume: %w", err)
	}
	return u, nil
}

func (s *applicationService) OpenResume(ctx context.Context, id string) (*ResumeFile, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ResumePath == "" {
		return nil, ErrNoResume
	}
	body, info, err := s.store.Get(ctx, a.ResumePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNoResume
		}
		return nil, fmt.Errorf("open resume: %w", err)
	}

	f := &ResumeFile{
		Body:        body,
		Filename:    path.Base(a.ResumePath),
		ContentType: info.ContentType,
		Size:        info.Size,
	}
	// MinIO returns user metadata keys in canonical header case.
	for k, v := range info.Metadata {
		if strings.EqualFold(k, "original-filename") && v != "" {
			f.Filename = v
		}
	}
	if f.ContentType == "" {
		f.ContentType = "application/octet-stream"
	}
	if f.Size <= 0 {
		f.Size = -1
	}
	return f, nil
}

func checkResume(in ResumeUpload) error {
	if in.Size == 0 {
		return newValidationError("file", "is empty")
	}
	if in.Size > MaxResumeSize {
		return newValidationError("file", fmt.Sprintf("must not exceed %d bytes", MaxResumeSize))
	}
	mediaType, _, err := mime.ParseMediaType(in.ContentType)
	if err != nil || !resumeContentTypes[mediaType] {
		return newValidationError("file", "must be a PDF, Word, RTF or plain text document")
	}
	return nil
}

func final(status string) bool {
	return status == model.ApplicationRejected || status == model.ApplicationHired
}
