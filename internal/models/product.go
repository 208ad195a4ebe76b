package models

import "time"

// DefaultCategory is assigned when a product is created without one.
const DefaultCategory = "Other"

// AllCategories is the listing sentinel that disables the category filter.
const AllCategories = "All"

// Categories is the fixed set of product categories.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Home & Garden",
	"Sports",
	"Books",
	"Toys",
	"Beauty",
	"Automotive",
	"Food",
	"Other",
}

// IsValidCategory reports whether name is one of Categories.
func IsValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Product represents a listing in the catalog. Inactive products are
// soft-deleted and hidden from every public read path.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" gorm:"type:varchar(100);not null"`
	Price       float64   `json:"price" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Image       string    `json:"image" gorm:"type:varchar(512)"`
	Category    string    `json:"category" gorm:"type:varchar(32);not null;default:Other;index"`
	Stock       int       `json:"stock" gorm:"not null;default:0"`
	Rating      float64   `json:"rating" gorm:"not null;default:0"`
	NumReviews  int       `json:"numReviews" gorm:"not null;default:0"`
	Tags        []string  `json:"tags" gorm:"serializer:json;type:text"`
	SellerID    string    `json:"sellerId" gorm:"type:varchar(36);not null;index"`
	Seller      *User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	IsActive    bool      `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductQuery is a normalized catalog search. Zero values mean "no filter"
// except Page and Limit, which are always set.
type ProductQuery struct {
	Search    string
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Offset returns the number of rows skipped before the requested page.
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
