package storage

import "time"

// User is a chat user. The ID is assigned by the chat transport.
type User struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// UserStore is the store a user has selected. A user has at most one.
type UserStore struct {
	UserID  int64  `gorm:"primaryKey;autoIncrement:false"`
	StoreID string `gorm:"size:16;not null;index"`
}

// UserSku is a SKU tracked by a user.
type UserSku struct {
	UserID int64  `gorm:"primaryKey;autoIncrement:false"`
	SkuID  string `gorm:"primaryKey;size:32;index"`
}

// StoreSku is a (store, sku) pair tracked by at least one user.
type StoreSku struct {
	StoreID string
	SkuID   string
}

// UserStoreSku is a SKU tracked by a user together with the user's store.
type UserStoreSku struct {
	UserID  int64
	StoreID string
	SkuID   string
}

// models lists every table owned by the repository.
func models() []any {
	return []any{&User{}, &UserStore{}, &UserSku{}}
}
