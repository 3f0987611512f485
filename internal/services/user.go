package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/pkg/logger"
)

type userStore interface {
	CreateWithAccounts(ctx context.Context, user *models.User, accounts []models.Account) error
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userService struct {
	store    userStore
	clockNow func() time.Time
}

func NewUserService(store userStore) *userService {
	return &userService{store: store, clockNow: time.Now}
}

// GetOrProvision returns the user's profile, creating it on first login.
// Provisioning seeds a default checking and savings account pair in the same
// database transaction as the profile row, so a half-provisioned user can
// never be observed.
func (s *userService) GetOrProvision(ctx context.Context, uid, email string) (*models.User, error) {
	user, err := s.store.GetByUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	var notFound *errs.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	now := s.clockNow()
	user = &models.User{
		UID:       uid,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	accounts := []models.Account{
		defaultAccount(uid, "Checking", models.AccountChecking, now),
		defaultAccount(uid, "Savings", models.AccountSavings, now),
	}
	if err := s.store.CreateWithAccounts(ctx, user, accounts); err != nil {
		// A concurrent first login may have provisioned already.
		var exists *errs.AlreadyExistsError
		if errors.As(err, &exists) {
			return s.store.GetByUID(ctx, uid)
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("provisioned new user", "uid", uid)
	return user, nil
}

func defaultAccount(uid, name string, typ models.AccountType, now time.Time) models.Account {
	return models.Account{
		ID:        uuid.NewString(),
		UserID:    uid,
		Name:      name,
		Type:      typ,
		Balance:   decimal.Zero,
		Currency:  "USD",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, req dto.CreateUserRequest) (*models.User, error) {
	user, err := s.store.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	user.UpdatedAt = s.clockNow()

	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
