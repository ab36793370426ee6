package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/event-management/internal/auth"
	userDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return toAccount(&u), nil
}

func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*auth.Account, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return toAccount(&u), nil
}

func (r *Repository) CreateAccount(ctx context.Context, account *auth.Account) error {
	u := &userDatamodel.User{
		Email:        account.Email,
		Name:         account.Name,
		PasswordHash: account.PasswordHash,
		Role:         account.Role,
		Provider:     account.Provider,
		ProviderID:   account.ProviderID,
		IsActive:     account.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return auth.ErrEmailTaken
		}
		return err
	}
	account.ID = u.ID
	account.CreatedAt = u.CreatedAt
	return nil
}

// DeleteAccount removes an account together with any permission grants it holds.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userDatamodel.UserPermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
	})
}

func (r *Repository) LinkProvider(ctx context.Context, userID int64, provider, providerID string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"provider":    provider,
			"provider_id": providerID,
		}).Error
}

func (r *Repository) GetPermissionNames(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN user_permissions ON user_permissions.permission_id = permissions.id").
		Where("user_permissions.user_id = ?", userID).
		Order("permissions.name ASC").
		Pluck("permissions.name", &names).Error
	return names, err
}

func toAccount(u *userDatamodel.User) *auth.Account {
	return &auth.Account{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Provider:     u.Provider,
		ProviderID:   u.ProviderID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}
