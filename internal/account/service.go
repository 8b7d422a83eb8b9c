package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ustazhub.kz/internal/auth"
	"ustazhub.kz/internal/ids"
)

// Store describes persistence operations required by the account registry.
type Store interface {
	Create(ctx context.Context, acc *Account) error
	Find(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	Update(ctx context.Context, acc *Account) error
	Delete(ctx context.Context, id string) error
}

// RecordPurger removes everything an account owns. Deleting an account
// cascades through it before the account row goes away.
type RecordPurger interface {
	PurgeByOwner(ctx context.Context, ownerID string) error
}

// Service implements the account registry: identity storage, credential
// verification and role-derived authorization.
type Service struct {
	store   Store
	records RecordPurger
	now     func() time.Time
}

// NewService constructs the registry. records may be nil when no cascade
// target exists (tests).
func NewService(store Store, records RecordPurger) *Service {
	return &Service{store: store, records: records, now: time.Now}
}

// Register creates a self-service account. The new account always gets the
// lowest-privilege role; any role in the request is ignored so signup can
// never self-escalate.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	in.normalize()
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	return s.create(ctx, in, RoleTeacher)
}

// CreateUser creates an account on behalf of a manager, optionally with an
// elevated role.
func (s *Service) CreateUser(ctx context.Context, actor *Account, in CreateUserInput) (*Account, error) {
	if actor == nil || !actor.Role.Can(CapManageUsers) {
		return nil, ErrForbidden
	}
	in.normalize()
	if err := validateStruct(&in.RegisterInput); err != nil {
		return nil, err
	}
	role := RoleTeacher
	if in.Role != "" {
		parsed, err := ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}
	return s.create(ctx, in.RegisterInput, role)
}

// Bootstrap guarantees a super-admin account exists at startup. When the
// username is already taken the existing account is returned untouched.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (*Account, error) {
	in := RegisterInput{Username: username, Password: password}
	in.normalize()
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	if acc, err := s.store.FindByUsername(ctx, in.Username); err == nil {
		return acc, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.create(ctx, in, RoleSuperAdmin)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role Role) (*Account, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	acc := &Account{
		ID:           ids.New(),
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		Role:         role,
		School:       in.School,
		Subject:      in.Subject,
		CategoryTier: in.Tier,
		Experience:   in.Experience,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Authenticate verifies credentials by username. Unknown names and hash
// mismatches are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	acc, err := s.store.FindByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.VerifyPassword(acc.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	return s.store.Find(ctx, id)
}

// GetByUsername returns an account by its unique name.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return s.store.FindByUsername(ctx, normalizeUsername(username))
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.store.List(ctx)
}

// UpdateProfile mutates descriptive attributes. Accounts may edit their own
// profile; editing someone else's requires the manage-users capability.
func (s *Service) UpdateProfile(ctx context.Context, actor *Account, targetID string, upd ProfileUpdate) (*Account, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if actor.ID != targetID && !actor.Role.Can(CapManageUsers) {
		return nil, ErrForbidden
	}
	if err := validateStruct(&upd); err != nil {
		return nil, err
	}
	acc, err := s.store.Find(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if upd.DisplayName != nil {
		acc.DisplayName = *upd.DisplayName
	}
	if upd.School != nil {
		acc.School = *upd.School
	}
	if upd.Subject != nil {
		acc.Subject = *upd.Subject
	}
	if upd.Tier != nil {
		acc.CategoryTier = *upd.Tier
	}
	if upd.Experience != nil {
		acc.Experience = *upd.Experience
	}
	acc.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// ChangeRole reassigns the target's role. Only the change-role capability
// allows it, the new role must be in the closed set, and an account can
// never change its own role.
func (s *Service) ChangeRole(ctx context.Context, actor *Account, targetID string, newRole Role) (*Account, error) {
	if actor == nil || !actor.Role.Can(CapChangeRole) {
		return nil, ErrForbidden
	}
	role, err := ParseRole(string(newRole))
	if err != nil {
		return nil, err
	}
	if actor.ID == targetID {
		return nil, ErrSelfModification
	}
	acc, err := s.store.Find(ctx, targetID)
	if err != nil {
		return nil, err
	}
	acc.Role = role
	acc.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Delete removes the target account and cascades over its achievement
// records. Self-deletion is rejected regardless of capability.
func (s *Service) Delete(ctx context.Context, actor *Account, targetID string) error {
	if actor == nil || !actor.Role.Can(CapDeleteUsers) {
		return ErrForbidden
	}
	if actor.ID == targetID {
		return ErrSelfModification
	}
	if _, err := s.store.Find(ctx, targetID); err != nil {
		return err
	}
	if s.records != nil {
		if err := s.records.PurgeByOwner(ctx, targetID); err != nil {
			return fmt.Errorf("purge records: %w", err)
		}
	}
	return s.store.Delete(ctx, targetID)
}

// RequestPasswordReset issues a reset token for the named account. The
// returned token is empty when the account does not exist; callers must
// respond identically in both cases so the endpoint cannot be used to
// enumerate usernames.
func (s *Service) RequestPasswordReset(ctx context.Context, username string) (string, error) {
	acc, err := s.store.FindByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	token, _, err := auth.GenerateResetToken(acc.ID)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	accountID, err := auth.ParseResetToken(token)
	if err != nil {
		return err
	}
	if len(newPassword) < 6 {
		return &ValidationError{Fields: []FieldError{{Field: "password", Error: "is too short (min 6)"}}}
	}
	acc, err := s.store.Find(ctx, accountID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acc.PasswordHash = hash
	acc.UpdatedAt = s.now().UTC()
	return s.store.Update(ctx, acc)
}

func normalizeUsername(username string) string {
	in := RegisterInput{Username: username}
	in.normalize()
	return in.Username
}
