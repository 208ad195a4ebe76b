package handlers

import (
	"time"

	"marketplace/internal/models"
	"marketplace/internal/services"
)

// SellerSummary is the public view of a product's owner.
type SellerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Category    string         `json:"category"`
	Stock       int            `json:"stock"`
	Rating      float64        `json:"rating"`
	NumReviews  int            `json:"numReviews"`
	Tags        []string       `json:"tags"`
	Seller      *SellerSummary `json:"seller"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// UserResponse is the public view of an account; it never carries the
// password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	Role      string    `json:"role"`
	Favorites []string  `json:"favorites"`
	CreatedAt time.Time `json:"createdAt"`
}

func newProductResponse(p *models.Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	resp := ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
		Rating:      p.Rating,
		NumReviews:  p.NumReviews,
		Tags:        tags,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Seller != nil {
		resp.Seller = &SellerSummary{ID: p.Seller.ID, Name: p.Seller.Name, Email: p.Seller.Email}
	} else {
		resp.Seller = &SellerSummary{ID: p.SellerID}
	}
	return resp
}

func newProductResponses(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, newProductResponse(&products[i]))
	}
	return out
}

func newUserResponse(profile *services.Profile) UserResponse {
	favorites := profile.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	u := profile.User
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Role:      u.Role,
		Favorites: favorites,
		CreatedAt: u.CreatedAt,
	}
}
