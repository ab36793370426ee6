package postgres

import (
	"context"

	userDatamodel "github.com/frahmantamala/event-management/internal/core/datamodel/user"
	"github.com/frahmantamala/event-management/internal/permission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.RepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) UpsertByName(ctx context.Context, name, description string) (*permission.Permission, error) {
	row := &userDatamodel.Permission{Name: name, Description: description}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(row).Error
	if err != nil {
		return nil, err
	}

	var stored userDatamodel.Permission
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return permission.FromDataModel(&stored), nil
}

func (r *PermissionRepository) ListAll(ctx context.Context) ([]*permission.Permission, error) {
	var rows []*userDatamodel.Permission
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return permission.FromDataModelSlice(rows), nil
}

// ReplaceUserPermissions overwrites the user's set inside one transaction.
func (r *PermissionRepository) ReplaceUserPermissions(ctx context.Context, userID int64, permissionIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&userDatamodel.UserPermission{}).Error; err != nil {
			return err
		}
		if len(permissionIDs) == 0 {
			return nil
		}

		rows := make([]userDatamodel.UserPermission, len(permissionIDs))
		for i, id := range permissionIDs {
			rows[i] = userDatamodel.UserPermission{UserID: userID, PermissionID: id}
		}
		return tx.Create(&rows).Error
	})
}

func (r *PermissionRepository) ListUserIDsByRole(ctx context.Context, role string) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("role = ?", role).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
