package main

import (
	"context"
	"fmt"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password123"

var seedUsers = []models.User{
	{Name: "Alice Johnson", Email: "alice@marketplace.com", Role: models.RoleAdmin},
	{Name: "Bob Smith", Email: "bob@marketplace.com", Role: models.RoleUser},
}

var seedProducts = []models.Product{
	{
		Title:       "Sony WH-1000XM5 Headphones",
		Price:       349.99,
		Description: "Industry-leading noise canceling headphones with 30-hour battery life, crystal clear hands-free calling, and exceptional sound quality. Perfect for travel and work-from-home setups.",
		Category:    "Electronics",
		Stock:       25,
		Rating:      4.8,
		NumReviews:  2847,
		Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&q=80",
		Tags:        []string{"headphones", "noise-canceling", "wireless", "sony", "audio"},
	},
	{
		Title:       "Minimalist Leather Wallet",
		Price:       49.99,
		Description: "Slim genuine leather bifold wallet with RFID blocking technology. Holds up to 8 cards and cash. Handcrafted with premium full-grain leather that ages beautifully.",
		Category:    "Clothing",
		Stock:       100,
		Rating:      4.6,
		NumReviews:  1203,
		Image:       "https://images.unsplash.com/photo-1627123424574-724758594e93?w=500&q=80",
		Tags:        []string{"wallet", "leather", "minimalist", "rfid", "accessories"},
	},
	{
		Title:       "MacBook Pro M3 Stand",
		Price:       89.99,
		Description: "Adjustable aluminum laptop stand with ergonomic height adjustment from 5-20 inches. Compatible with all laptops 11-17 inches. Improves airflow and posture. Includes cleaning cloth.",
		Category:    "Electronics",
		Stock:       60,
		Rating:      4.7,
		NumReviews:  876,
		Image:       "https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=500&q=80",
		Tags:        []string{"laptop-stand", "ergonomic", "aluminum", "desk", "productivity"},
	},
	{
		Title:       "Organic Cotton Yoga Mat",
		Price:       79.99,
		Description: "Eco-friendly yoga mat made from natural rubber and organic cotton. Non-slip surface provides excellent grip. 6mm thick for joint protection. Includes carrying strap.",
		Category:    "Sports",
		Stock:       45,
		Rating:      4.5,
		NumReviews:  534,
		Image:       "https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=500&q=80",
		Tags:        []string{"yoga", "mat", "organic", "eco-friendly", "fitness"},
	},
	{
		Title:       "Ceramic Pour-Over Coffee Set",
		Price:       64.99,
		Description: "Handcrafted ceramic dripper with matching server. Brews 1-4 cups of exceptional pour-over coffee. Includes 40 bleached paper filters. Perfect for coffee enthusiasts.",
		Category:    "Home & Garden",
		Stock:       35,
		Rating:      4.9,
		NumReviews:  412,
		Image:       "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=500&q=80",
		Tags:        []string{"coffee", "ceramic", "pour-over", "kitchen", "handmade"},
	},
	{
		Title:       "Atomic Habits - James Clear",
		Price:       18.99,
		Description: "An Easy & Proven Way to Build Good Habits & Break Bad Ones. The #1 New York Times bestseller. Over 10 million copies sold worldwide. A practical guide to tiny changes that deliver remarkable results.",
		Category:    "Books",
		Stock:       200,
		Rating:      4.9,
		NumReviews:  45823,
		Image:       "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=500&q=80",
		Tags:        []string{"book", "self-help", "habits", "productivity", "bestseller"},
	},
	{
		Title:       "Wireless Mechanical Keyboard",
		Price:       149.99,
		Description: "Compact 75% layout mechanical keyboard with hot-swappable switches. Bluetooth 5.0 connects up to 3 devices. 4000mAh battery lasts 2 weeks. PBT keycaps for durability.",
		Category:    "Electronics",
		Stock:       40,
		Rating:      4.6,
		NumReviews:  1087,
		Image:       "https://images.unsplash.com/photo-1587829741301-dc798b83add3?w=500&q=80",
		Tags:        []string{"keyboard", "mechanical", "wireless", "bluetooth", "typing"},
	},
	{
		Title:       "Succulent Plant Collection",
		Price:       34.99,
		Description: "Set of 6 unique live succulents in terracotta pots. Low maintenance, perfect for beginners. Each plant is hand-selected for quality. Includes care guide and fertilizer.",
		Category:    "Home & Garden",
		Stock:       50,
		Rating:      4.4,
		NumReviews:  289,
		Image:       "https://images.unsplash.com/photo-1459411621453-7b03977f4bfc?w=500&q=80",
		Tags:        []string{"plants", "succulents", "home-decor", "garden", "gift"},
	},
	{
		Title:       "Stainless Steel Water Bottle",
		Price:       39.99,
		Description: "Double-wall vacuum insulated bottle keeps drinks cold 24hrs and hot 12hrs. BPA-free 32oz capacity. Leak-proof lid. Includes straw and cleaning brush. Dishwasher safe.",
		Category:    "Sports",
		Stock:       120,
		Rating:      4.7,
		NumReviews:  3421,
		Image:       "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=500&q=80",
		Tags:        []string{"water-bottle", "insulated", "stainless-steel", "eco-friendly", "sports"},
	},
	{
		Title:       "LEGO Architecture Skyline",
		Price:       59.99,
		Description: "Build iconic city skylines with this detailed LEGO Architecture set. Features 598 pieces. Includes New York, Paris, London, and Tokyo landmarks. Perfect for ages 12+ and display.",
		Category:    "Toys",
		Stock:       30,
		Rating:      4.8,
		NumReviews:  756,
		Image:       "https://images.unsplash.com/photo-1606503153255-59d8b8b82176?w=500&q=80",
		Tags:        []string{"lego", "architecture", "toys", "building", "collector"},
	},
}

// seedFavoriteIndexes are the products Bob starts with in his favorites.
var seedFavoriteIndexes = []int{0, 4, 5}

// seedDatabase inserts demo users, products and favorites when the users
// table is empty. Products alternate between the two sellers.
func seedDatabase(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	var existing int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if existing > 0 {
		log.Info("database already has data, skipping seed", zap.Int64("users", existing))
		return nil
	}

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	favoriteRepo := repositories.NewGORMFavoriteRepository(db)

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := make([]models.User, len(seedUsers))
	copy(users, seedUsers)
	for i := range users {
		users[i].Password = string(hashed)
		users[i].Avatar = services.DefaultAvatar(users[i].Name)
		if err := userRepo.Create(ctx, &users[i]); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", users[i].Email, err)
		}
		log.Info("seeded user", zap.String("email", users[i].Email), zap.String("role", users[i].Role))
	}

	products := make([]models.Product, len(seedProducts))
	copy(products, seedProducts)
	for i := range products {
		products[i].SellerID = users[i%len(users)].ID
		products[i].IsActive = true
		if err := productRepo.Create(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].Title, err)
		}
	}
	log.Info("seeded products", zap.Int("count", len(products)))

	bob := users[1]
	for _, idx := range seedFavoriteIndexes {
		if _, err := favoriteRepo.Add(ctx, bob.ID, products[idx].ID); err != nil {
			return fmt.Errorf("failed to seed favorites: %w", err)
		}
	}
	log.Info("seeded favorites", zap.String("email", bob.Email), zap.Int("count", len(seedFavoriteIndexes)))
	return nil
}
