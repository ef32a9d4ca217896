package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repository implements the queries used by the assistant and the discount job.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on top of db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddUser stores a user. Existing users are left unchanged.
func (r *Repository) AddUser(ctx context.Context, user User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&user).Error
	if err != nil {
		return fmt.Errorf("add user %d: %w", user.ID, err)
	}
	return nil
}

// SetUserStore replaces the store selected by a user.
func (r *Repository) SetUserStore(ctx context.Context, userID int64, storeID string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"store_id"}),
		}).
		Create(&UserStore{UserID: userID, StoreID: storeID}).Error
	if err != nil {
		return fmt.Errorf("set store of user %d: %w", userID, err)
	}
	return nil
}

// UserStoreID returns the store selected by a user, or ErrNotFound.
func (r *Repository) UserStoreID(ctx context.Context, userID int64) (string, error) {
	var us UserStore
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&us).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get store of user %d: %w", userID, err)
	}
	return us.StoreID, nil
}

// AddUserSku starts tracking a SKU. Tracking a SKU twice is not an error.
func (r *Repository) AddUserSku(ctx context.Context, userID int64, skuID string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "sku_id"}},
			DoNothing: true,
		}).
		Create(&UserSku{UserID: userID, SkuID: skuID}).Error
	if err != nil {
		return fmt.Errorf("add sku %s for user %d: %w", skuID, userID, err)
	}
	return nil
}

// RemoveUserSku stops tracking a SKU. Returns ErrNotFound if it was not tracked.
func (r *Repository) RemoveUserSku(ctx context.Context, userID int64, skuID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND sku_id = ?", userID, skuID).
		Delete(&UserSku{})
	if result.Error != nil {
		return fmt.Errorf("remove sku %s for user %d: %w", skuID, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UserSkuIDs returns the SKUs tracked by a user, ordered by id.
func (r *Repository) UserSkuIDs(ctx context.Context, userID int64) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&UserSku{}).
		Where("user_id = ?", userID).
		Order("sku_id").
		Pluck("sku_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list skus of user %d: %w", userID, err)
	}
	return ids, nil
}

// StoreSkus returns every distinct (store, sku) pair tracked by users that
// have selected a store.
func (r *Repository) StoreSkus(ctx context.Context) ([]StoreSku, error) {
	var rows []StoreSku
	err := r.db.WithContext(ctx).
		Table("user_skus").
		Select("DISTINCT user_stores.store_id AS store_id, user_skus.sku_id AS sku_id").
		Joins("JOIN user_stores ON user_stores.user_id = user_skus.user_id").
		Order("store_id, sku_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list store skus: %w", err)
	}
	return rows, nil
}

// UserStoreSkus returns every tracked SKU with its user and the user's store.
func (r *Repository) UserStoreSkus(ctx context.Context) ([]UserStoreSku, error) {
	var rows []UserStoreSku
	err := r.db.WithContext(ctx).
		Table("user_skus").
		Select("user_skus.user_id AS user_id, user_stores.store_id AS store_id, user_skus.sku_id AS sku_id").
		Joins("JOIN user_stores ON user_stores.user_id = user_skus.user_id").
		Order("user_skus.user_id, user_skus.sku_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list user store skus: %w", err)
	}
	return rows, nil
}
