package achievement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/obs"
	"ustazhub.kz/internal/scoring"
	"ustazhub.kz/internal/storage"
	"ustazhub.kz/internal/stream"
)

// DefaultMaxUploadBytes caps attachment size at 5 MiB unless configured
// otherwise.
const DefaultMaxUploadBytes = 5 << 20

// Store describes persistence operations for achievement records.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Find(ctx context.Context, id int64) (*Record, error)
	ListAll(ctx context.Context) ([]*Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Record, error)
	ListApproved(ctx context.Context) ([]*Record, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	DeleteByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// Upload is an attachment accompanying a submission.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// SubmitInput carries a new submission.
type SubmitInput struct {
	Classification scoring.Classification
	Title          string
	Description    string
	StudentName    string
	File           *Upload
}

// SubmitResult pairs the created record with a scoring diagnosis. Recognized
// is false when the classification matched no table and points were stored
// as 0; the submission still succeeds.
type SubmitResult struct {
	Record     *Record
	Recognized bool
}

// Service drives the achievement lifecycle.
type Service struct {
	store    Store
	files    storage.Store
	events   *stream.Stream
	maxBytes int64
	now      func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithMaxUploadBytes overrides the attachment size limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithEvents publishes lifecycle events to the given stream.
func WithEvents(events *stream.Stream) Option {
	return func(s *Service) { s.events = events }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the lifecycle service. files may be nil when
// submissions never carry attachments (tests).
func NewService(store Store, files storage.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		files:    files,
		maxBytes: DefaultMaxUploadBytes,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxUploadBytes reports the configured attachment limit.
func (s *Service) MaxUploadBytes() int64 { return s.maxBytes }

// Submit creates a record in state pending with points computed and frozen
// at this moment. The attachment, if any, is persisted first: a storage
// failure or an oversized file aborts the submission without creating a
// record.
func (s *Service) Submit(ctx context.Context, owner *account.Account, in SubmitInput) (*SubmitResult, error) {
	if owner == nil {
		return nil, account.ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	var locator string
	if in.File != nil {
		var err error
		locator, err = s.storeUpload(ctx, in.File)
		if err != nil {
			return nil, err
		}
	}

	classification := in.Classification.Normalize()
	points, recognized := scoring.Score(classification)

	rec := &Record{
		OwnerID:        owner.ID,
		Classification: classification,
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		StudentName:    strings.TrimSpace(in.StudentName),
		FileLocator:    locator,
		Points:         points,
		Status:         StatusPending,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		if locator != "" && s.files != nil {
			_ = s.files.Remove(ctx, locator)
		}
		return nil, err
	}

	obs.ObserveSubmission(string(classification.Type))
	s.publish(stream.Event{Kind: stream.KindSubmitted, RecordID: rec.ID, OwnerID: rec.OwnerID, Points: rec.Points})
	if !recognized {
		obs.ObserveUnrecognizedClassification()
		s.publish(stream.Event{Kind: stream.KindUnrecognized, RecordID: rec.ID, OwnerID: rec.OwnerID})
	}
	return &SubmitResult{Record: rec, Recognized: recognized}, nil
}

func (s *Service) storeUpload(ctx context.Context, up *Upload) (string, error) {
	if s.files == nil {
		return "", errors.New("achievement: file storage is not configured")
	}
	// Read one byte past the limit so a file of exactly the limit passes
	// and limit+1 fails.
	limited := &countingReader{r: io.LimitReader(up.Reader, s.maxBytes+1)}
	locator, err := s.files.Save(ctx, up.Filename, limited)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	if limited.n > s.maxBytes {
		_ = s.files.Remove(ctx, locator)
		return "", ErrPayloadTooLarge
	}
	return locator, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Approve transitions the record to approved. The capability check runs on
// every call; repeating the call leaves the record approved.
func (s *Service) Approve(ctx context.Context, moderator *account.Account, id int64) (*Record, error) {
	return s.moderate(ctx, moderator, id, StatusApproved, stream.KindApproved)
}

// Reject transitions the record to rejected under the same guard.
func (s *Service) Reject(ctx context.Context, moderator *account.Account, id int64) (*Record, error) {
	return s.moderate(ctx, moderator, id, StatusRejected, stream.KindRejected)
}

func (s *Service) moderate(ctx context.Context, moderator *account.Account, id int64, status Status, kind stream.Kind) (*Record, error) {
	if moderator == nil || !moderator.Role.Can(account.CapModerateAchievements) {
		return nil, account.ErrForbidden
	}
	rec, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != status {
		if err := s.store.UpdateStatus(ctx, id, status); err != nil {
			return nil, err
		}
		rec.Status = status
	}
	obs.ObserveModeration(string(status))
	s.publish(stream.Event{Kind: kind, RecordID: rec.ID, OwnerID: rec.OwnerID, ActorID: moderator.ID, Points: rec.Points})
	return rec, nil
}

// Delete removes a record permanently. Allowed for the record's owner and
// for accounts holding the manage-users capability.
func (s *Service) Delete(ctx context.Context, actor *account.Account, id int64) error {
	if actor == nil {
		return account.ErrForbidden
	}
	rec, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if rec.OwnerID != actor.ID && !actor.Role.Can(account.CapManageUsers) {
		return account.ErrForbidden
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if rec.FileLocator != "" && s.files != nil {
		_ = s.files.Remove(ctx, rec.FileLocator)
	}
	return nil
}

// Get returns a single record; owners see their own, moderators see any.
func (s *Service) Get(ctx context.Context, viewer *account.Account, id int64) (*Record, error) {
	if viewer == nil {
		return nil, account.ErrForbidden
	}
	rec, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != viewer.ID && !viewer.Role.Can(account.CapModerateAchievements) {
		return nil, account.ErrForbidden
	}
	return rec, nil
}

// List returns every record for moderators and the viewer's own records
// otherwise.
func (s *Service) List(ctx context.Context, viewer *account.Account) ([]*Record, error) {
	if viewer == nil {
		return nil, account.ErrForbidden
	}
	if viewer.Role.Can(account.CapModerateAchievements) {
		return s.store.ListAll(ctx)
	}
	return s.store.ListByOwner(ctx, viewer.ID)
}

// PurgeByOwner deletes all records of an account along with their stored
// files. Used by the account-deletion cascade.
func (s *Service) PurgeByOwner(ctx context.Context, ownerID string) error {
	locators, err := s.store.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if s.files != nil {
		for _, locator := range locators {
			_ = s.files.Remove(ctx, locator)
		}
	}
	return nil
}

func (s *Service) publish(evt stream.Event) {
	if s.events != nil {
		s.events.Publish(evt)
	}
}
