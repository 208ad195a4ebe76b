package services

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Listing defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 9
	MaxLimit     = 50
)

var (
	ErrProductNotFound     = apperrors.NotFound("Product not found")
	ErrProductUpdateDenied = apperrors.Forbidden("Not authorized to update this product")
	ErrProductDeleteDenied = apperrors.Forbidden("Not authorized to delete this product")
)

var sortFields = map[string]bool{"price": true, "createdAt": true, "rating": true, "title": true}

// ProductQueryParams carries listing parameters exactly as received.
type ProductQueryParams struct {
	Search    string
	Category  string
	MinPrice  string
	MaxPrice  string
	SortBy    string
	SortOrder string
	Page      string
	Limit     string
}

// PageInfo describes where a page sits in the full result set.
type PageInfo struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	Limit         int   `json:"limit"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	Pagination PageInfo         `json:"pagination"`
}

// PageCache stores rendered listing pages. Implementations must treat a
// miss as (false, nil).
type PageCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidateAll(ctx context.Context) error
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Price       *float64 `json:"price" validate:"required,finite,gte=0"`
	Description string   `json:"description" validate:"required,min=10,max=1000"`
	Category    string   `json:"category" validate:"required,category"`
	Stock       *int     `json:"stock" validate:"omitnil,gte=0"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	// UploadImage stores a pending image upload and returns its URL. It runs
	// only after the input has been validated and replaces Image.
	UploadImage func() (string, error) `json:"-" validate:"-"`
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Title       *string   `json:"title" validate:"omitnil,min=3,max=100"`
	Price       *float64  `json:"price" validate:"omitnil,finite,gte=0"`
	Description *string   `json:"description" validate:"omitnil,min=10,max=1000"`
	Category    *string   `json:"category" validate:"omitnil,category"`
	Stock       *int      `json:"stock" validate:"omitnil,gte=0"`
	Tags        *[]string `json:"tags"`
	Image       *string   `json:"image"`
	// UploadImage runs after authorization and validation and replaces Image.
	UploadImage func() (string, error) `json:"-" validate:"-"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	cache     PageCache
	publisher EventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
	sfGroup   singleflight.Group
	// generation is part of every listing cache key; bumping it orphans pages
	// that were computed before a mutation.
	generation atomic.Uint64
}

// NewProductService creates a new ProductService. cache and publisher may be nil.
func NewProductService(repo repositories.ProductRepository, cache PageCache, publisher EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		validate:  NewValidator(),
		logger:    logger,
	}
}

// ParseProductQuery normalizes raw listing parameters. Malformed numbers
// fall back to defaults instead of failing.
func ParseProductQuery(p ProductQueryParams) models.ProductQuery {
	q := models.ProductQuery{
		Search:    strings.TrimSpace(p.Search),
		SortBy:    "createdAt",
		SortOrder: "desc",
		Page:      DefaultPage,
		Limit:     DefaultLimit,
	}

	if category := strings.TrimSpace(p.Category); category != "" && category != models.AllCategories {
		q.Category = category
	}
	q.MinPrice = parsePrice(p.MinPrice)
	q.MaxPrice = parsePrice(p.MaxPrice)

	if sortFields[p.SortBy] {
		q.SortBy = p.SortBy
	}
	if p.SortOrder == "asc" {
		q.SortOrder = "asc"
	}

	if page, err := strconv.Atoi(strings.TrimSpace(p.Page)); err == nil {
		q.Page = max(page, 1)
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(p.Limit)); err == nil {
		q.Limit = min(max(limit, 1), MaxLimit)
	}
	return q
}

func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// listCacheKey identifies a normalized query in the page cache.
func listCacheKey(generation uint64, q models.ProductQuery) string {
	values := url.Values{}
	values.Set("search", q.Search)
	values.Set("category", q.Category)
	values.Set("minPrice", optionalFloat(q.MinPrice))
	values.Set("maxPrice", optionalFloat(q.MaxPrice))
	values.Set("sortBy", q.SortBy)
	values.Set("sortOrder", q.SortOrder)
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	return "list:g" + strconv.FormatUint(generation, 10) + ":" + values.Encode()
}

// NewPageInfo computes pagination metadata for total matches.
func NewPageInfo(page, limit int, total int64) PageInfo {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return PageInfo{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProducts: total,
		Limit:         limit,
		HasNextPage:   page < totalPages,
		HasPrevPage:   page > 1,
	}
}

// List returns one page of active products matching q.
func (s *ProductService) List(ctx context.Context, q models.ProductQuery) (*ProductPage, error) {
	key := listCacheKey(s.generation.Load(), q)
	if s.cache != nil {
		var cached ProductPage
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("product listing cache read failed", zap.String("key", key), zap.Error(err))
		}
		if found {
			return &cached, nil
		}
	}

	queryCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sfGroup.Do(key, func() (interface{}, error) {
		products, total, err := s.repo.Query(queryCtx, q)
		if err != nil {
			return nil, err
		}
		return &ProductPage{Products: products, Pagination: NewPageInfo(q.Page, q.Limit, total)}, nil
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch products", err)
	}
	page := v.(*ProductPage)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, page); err != nil {
			s.logger.Warn("product listing cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return page, nil
}

// Get returns an active product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Categories returns the listing filter values: "All" followed by every
// category.
func (s *ProductService) Categories() []string {
	return append([]string{models.AllCategories}, models.Categories...)
}

// Create validates in and stores a new active product owned by owner.
func (s *ProductService) Create(ctx context.Context, in ProductInput, owner *models.User) (*models.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = models.DefaultCategory
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if in.UploadImage != nil {
		imageURL, err := in.UploadImage()
		if err != nil {
			return nil, err
		}
		in.Image = imageURL
	}

	product := &models.Product{
		Title:       in.Title,
		Price:       *in.Price,
		Description: in.Description,
		Image:       strings.TrimSpace(in.Image),
		Category:    in.Category,
		Tags:        NormalizeTags(in.Tags),
		SellerID:    owner.ID,
		IsActive:    true,
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperrors.Internal("Failed to create product", err)
	}

	s.afterMutation(ctx, EventProductCreated, product)
	return s.load(ctx, product.ID)
}

// Update applies patch to the product if requester is its seller or an admin.
func (s *ProductService) Update(ctx context.Context, id string, patch ProductPatch, requester *models.User) (*models.Product, error) {
	product, err := s.authorize(ctx, id, requester, ErrProductUpdateDenied)
	if err != nil {
		return nil, err
	}

	patch = trimPatch(patch)
	if err := s.validate.Struct(patch); err != nil {
		return nil, apperrors.FromValidator(err)
	}
	if patch.UploadImage != nil {
		imageURL, err := patch.UploadImage()
		if err != nil {
			return nil, err
		}
		patch.Image = &imageURL
	}

	fields := applyPatch(product, patch)
	if len(fields) == 0 {
		return product, nil
	}
	if err := s.repo.Update(ctx, product, append(fields, "updated_at")); err != nil {
		return nil, apperrors.Internal("Failed to update product", err)
	}

	s.afterMutation(ctx, EventProductUpdated, product)
	return s.load(ctx, id)
}

// SoftDelete hides the product from every public read path.
func (s *ProductService) SoftDelete(ctx context.Context, id string, requester *models.User) error {
	product, err := s.authorize(ctx, id, requester, ErrProductDeleteDenied)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return apperrors.Internal("Failed to delete product", err)
	}
	product.IsActive = false
	s.afterMutation(ctx, EventProductDeleted, product)
	return nil
}

// Restore makes a soft-deleted product visible again.
func (s *ProductService) Restore(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return nil, apperrors.Internal("Failed to restore product", err)
	}
	product.IsActive = true
	s.afterMutation(ctx, EventProductRestored, product)
	return product, nil
}

func (s *ProductService) load(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperrors.Internal("Failed to fetch product", err)
	}
	return product, nil
}

// authorize loads a product the requester may manage. Inactive products are
// reported as missing to anyone who could not manage them.
func (s *ProductService) authorize(ctx context.Context, id string, requester *models.User, denied error) (*models.Product, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	canManage := requester != nil && (product.SellerID == requester.ID || requester.IsAdmin())
	if !product.IsActive && !canManage {
		return nil, ErrProductNotFound
	}
	if !canManage {
		return nil, denied
	}
	return product, nil
}

// InvalidateListings drops every cached listing page. Pages still being
// computed from older data are written under the previous generation and
// never read again.
func (s *ProductService) InvalidateListings(ctx context.Context) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("product listing cache invalidation failed", zap.Error(err))
	}
}

func (s *ProductService) afterMutation(ctx context.Context, eventType string, product *models.Product) {
	s.InvalidateListings(ctx)
	publishEvent(s.publisher, s.logger, eventType, map[string]interface{}{
		"productId": product.ID,
		"sellerId":  product.SellerID,
		"title":     product.Title,
		"isActive":  product.IsActive,
	})
}

func trimPatch(p ProductPatch) ProductPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Title = trim(p.Title)
	p.Description = trim(p.Description)
	p.Category = trim(p.Category)
	p.Image = trim(p.Image)
	return p
}

// applyPatch merges supplied fields into product and returns the changed
// column names.
func applyPatch(product *models.Product, p ProductPatch) []string {
	var fields []string
	if p.Title != nil {
		product.Title = *p.Title
		fields = append(fields, "title")
	}
	if p.Price != nil {
		product.Price = *p.Price
		fields = append(fields, "price")
	}
	if p.Description != nil {
		product.Description = *p.Description
		fields = append(fields, "description")
	}
	if p.Category != nil {
		product.Category = *p.Category
		fields = append(fields, "category")
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
		fields = append(fields, "stock")
	}
	if p.Tags != nil {
		product.Tags = NormalizeTags(*p.Tags)
		fields = append(fields, "tags")
	}
	if p.Image != nil {
		product.Image = *p.Image
		fields = append(fields, "image")
	}
	return fields
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SplitTags parses the comma-separated form of a tag list.
func SplitTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

