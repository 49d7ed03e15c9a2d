// Package auth implements login and signup against the registered
// credential list held in the snapshot store.
package auth

import (
	"context"
	"fmt"

	"github.com/docmanage/opd-api/internal/model"
	"github.com/docmanage/opd-api/internal/repository"
	"github.com/docmanage/opd-api/pkg/auth"
	"github.com/docmanage/opd-api/pkg/logger"
	"github.com/docmanage/opd-api/pkg/security"
)

// seedUser is a built-in account written to the credential slot the
// first time the service starts against an empty store.
type seedUser struct {
	ID       string
	Password string
	Name     string
	Role     model.Role
}

var seedUsers = []seedUser{
	{ID: "ss78648742", Password: "Sumit@siyasi1", Name: "Administrator", Role: model.RoleAdmin},
	{ID: "Dr. Smith", Password: "Smith@456", Name: "Dr. Smith", Role: model.RoleDoctor},
	{ID: "Dr. Anevesh", Password: "Anevesh@789", Name: "Dr. Anevesh", Role: model.RoleDoctor},
}

type Service struct {
	repo   repository.SnapshotRepository
	hasher security.PasswordHasher
	jwtSvc auth.JWTService
	logger *logger.Logger
}

func NewService(repo repository.SnapshotRepository, hasher security.PasswordHasher, jwtSvc auth.JWTService, l *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		jwtSvc: jwtSvc,
		logger: l,
	}
}

// SeedDefaults writes the built-in accounts when the credential slot has
// never been populated. An already-seeded store is left alone so signups
// survive restarts.
func (s *Service) SeedDefaults(ctx context.Context) error {
	existing, err := s.repo.LoadCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	creds := make([]model.Credential, 0, len(seedUsers))
	for _, u := range seedUsers {
		hash, err := s.hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash seed credential: %w", err)
		}
		creds = append(creds, model.Credential{
			ID:           u.ID,
			PasswordHash: hash,
			Name:         u.Name,
			Role:         u.Role,
		})
	}

	if err := s.repo.SaveCredentials(ctx, creds); err != nil {
		return fmt.Errorf("failed to seed credentials: %w", err)
	}
	s.logger.Info("seeded default credentials", "count", len(creds))
	return nil
}

// Login succeeds only when identity, secret and selected role all match a
// registered credential. The error never reveals which part failed.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	creds, err := s.repo.LoadCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	for _, c := range creds {
		if c.ID != req.ID || c.Role != req.Role {
			continue
		}
		if s.hasher.Compare(c.PasswordHash, req.Password) != nil {
			continue
		}

		user := model.AuthUser{ID: c.ID, Name: c.Name, Role: c.Role}
		token, err := s.jwtSvc.GenerateToken(&user)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		if err := s.repo.SaveCurrentUser(ctx, &user); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}

		s.logger.Info("user logged in", "user_id", user.ID, "role", string(user.Role))
		return &model.TokenResponse{AccessToken: token, User: user}, nil
	}

	return nil, model.ErrInvalidCredentials
}

// Signup registers a new doctor account. Admin accounts are managed out
// of band and cannot be self-registered.
func (s *Service) Signup(ctx context.Context, req *model.SignupRequest) (*model.AuthUser, error) {
	creds, err := s.repo.LoadCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	for _, c := range creds {
		if c.ID == req.ID {
			return nil, model.ErrDuplicateIdentity
		}
	}

	if !security.CheckPolicy(req.Password).IsValid() {
		return nil, model.ErrWeakPassword
	}

	if req.Password != req.ConfirmPassword {
		return nil, model.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := req.Name
	if name == "" {
		name = req.ID
	}

	cred := model.Credential{
		ID:           req.ID,
		PasswordHash: hash,
		Name:         name,
		Role:         model.RoleDoctor,
	}

	if err := s.repo.SaveCredentials(ctx, append(creds, cred)); err != nil {
		return nil, fmt.Errorf("failed to persist credentials: %w", err)
	}

	s.logger.Info("doctor account created", "user_id", cred.ID)
	return &model.AuthUser{ID: cred.ID, Name: cred.Name, Role: cred.Role}, nil
}

// Logout clears the persisted session slot. The issued token simply
// expires; there is no revocation list.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.repo.ClearCurrentUser(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the persisted session, if any.
func (s *Service) CurrentUser(ctx context.Context) (*model.AuthUser, error) {
	return s.repo.LoadCurrentUser(ctx)
}

// ValidateToken rebuilds the actor from a session token.
func (s *Service) ValidateToken(token string) (*model.AuthUser, error) {
	return s.jwtSvc.ValidateToken(token)
}
