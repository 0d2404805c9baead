// File: internal/repository/user/gorm_account_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iyunix/asha-chat/internal/domain"
	"github.com/iyunix/asha-chat/internal/logging"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type gormAccountRepository struct {
	db       *gorm.DB
	logger   logging.Logger
	validate *validator.Validate
}

func NewGormAccountRepository(db *gorm.DB, logger logging.Logger) AccountRepository {
	return &gormAccountRepository{db: db, logger: logger, validate: validator.New()}
}

// Create assigns a UUID when the caller did not.
func (r *gormAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := r.validateEmail(account.Email); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	account.Email = normalizeEmail(account.Email)

	if _, err := r.FindByEmail(ctx, account.Email); err == nil {
		return nil, ErrEmailTaken
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		r.logger.Error("[AccountRepository] database error during account creation", "error", err)
		return nil, errors.New("database error creating account")
	}

	r.logger.Info("[AccountRepository] account created", "account_id", account.ID, "email", logging.MaskEmail(account.Email))
	return account, nil
}

func (r *gormAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if id == "" {
		return nil, errors.New("invalid account ID")
	}
	var account domain.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	return r.handleFindError(err, &account)
}

func (r *gormAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if err := r.validateEmail(email); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	var account domain.Account
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error
	return r.handleFindError(err, &account)
}

func (r *gormAccountRepository) handleFindError(err error, account *domain.Account) (*domain.Account, error) {
	if err == nil {
		return account, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	r.logger.Error("[AccountRepository] database error during lookup", "error", err)
	return nil, errors.New("database error finding account")
}

func (r *gormAccountRepository) validateEmail(email string) error {
	if err := r.validate.Var(strings.TrimSpace(email), "required,email"); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
