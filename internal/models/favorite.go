package models

import "time"

// UserFavorite is one membership of a product in a user's favorites set.
// The (UserID, ProductID) pair is unique; ID order is insertion order.
type UserFavorite struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_user_favorites_pair"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);not null;uniqueIndex:idx_user_favorites_pair;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for UserFavorite.
func (UserFavorite) TableName() string {
	return "user_favorites"
}
