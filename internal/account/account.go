// Package account manages shipping profiles and the one-time admin claim.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

var (
	// ErrAdminTaken means another user already holds the admin role.
	ErrAdminTaken = errors.New("admin already claimed")
	// ErrAlreadyAdmin means the caller is the admin.
	ErrAlreadyAdmin = errors.New("already admin")
)

type Store interface {
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
	UpsertProfile(ctx context.Context, p model.Profile) error
	AdminUserID(ctx context.Context) (string, error)
	InsertAdmin(ctx context.Context, userID string, at time.Time) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(st Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Profile returns the saved profile, or an empty one carrying only the user
// id when nothing was saved yet.
func (s *Service) Profile(ctx context.Context, userID string) (model.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{UserID: userID}, nil
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("getting profile: %w", err)
	}
	return p, nil
}

// SaveProfile validates and stores p for userID.
func (s *Service) SaveProfile(ctx context.Context, userID string, p model.Profile) (model.Profile, error) {
	p.UserID = userID
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)

	var v model.ValidationError
	if p.FirstName == "" {
		v.Add("firstName is required")
	}
	if p.LastName == "" {
		v.Add("lastName is required")
	}
	if p.Phone == "" {
		v.Add("phone is required")
	}
	if err := v.Err(); err != nil {
		return model.Profile{}, err
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return model.Profile{}, fmt.Errorf("saving profile: %w", err)
	}
	return p, nil
}

// IsAdmin reports whether userID holds the admin role.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	admin, err := s.store.AdminUserID(ctx)
	if err != nil {
		return false, fmt.Errorf("reading admin: %w", err)
	}
	return admin != "" && admin == userID, nil
}

// ClaimAdmin grants the admin role to userID if nobody holds it. Concurrent
// claims are settled by the store's unique key: exactly one wins.
func (s *Service) ClaimAdmin(ctx context.Context, userID string) error {
	admin, err := s.store.AdminUserID(ctx)
	if err != nil {
		return fmt.Errorf("reading admin: %w", err)
	}
	switch {
	case admin == userID:
		return ErrAlreadyAdmin
	case admin != "":
		return ErrAdminTaken
	}
	if err := s.store.InsertAdmin(ctx, userID, s.now().UTC()); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return s.claimLost(ctx, userID)
		}
		return fmt.Errorf("claiming admin: %w", err)
	}
	obs.Logger.Info("admin_claimed", "user_id", userID)
	return nil
}

// claimLost resolves a claim that hit the unique key: the caller may have won
// through a concurrent request of its own.
func (s *Service) claimLost(ctx context.Context, userID string) error {
	holder, err := s.store.AdminUserID(ctx)
	if err != nil {
		return fmt.Errorf("reading admin: %w", err)
	}
	if holder == userID {
		return ErrAlreadyAdmin
	}
	return ErrAdminTaken
}
