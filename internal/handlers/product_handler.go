package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"marketplace/internal/apperrors"
	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	products  *services.ProductService
	favorites *services.FavoriteService
	images    *ImageStore
}

// NewProductHandler creates a new ProductHandler. images may be nil, in which
// case uploaded files are ignored.
func NewProductHandler(products *services.ProductService, favorites *services.FavoriteService, images *ImageStore) *ProductHandler {
	return &ProductHandler{
		products:  products,
		favorites: favorites,
		images:    images,
	}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/categories", h.HandleGetCategories)
	productRoutes.Get("/", guards.Optional, h.HandleGetProducts)
	productRoutes.Get("/:id", guards.Optional, h.HandleGetProductByID)
	productRoutes.Post("/", guards.Required, h.HandleCreateProduct)
	productRoutes.Put("/:id", guards.Required, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", guards.Required, h.HandleDeleteProduct)

	adminRoutes := router.Group("/admin", guards.Required, guards.Admin)
	adminRoutes.Patch("/products/:id/restore", h.HandleRestoreProduct)
}

// HandleGetProducts searches the catalog and returns one page.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	query := services.ParseProductQuery(services.ProductQueryParams{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		MinPrice:  c.Query("minPrice"),
		MaxPrice:  c.Query("maxPrice"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
	})

	page, err := h.products.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{
		"products":   newProductResponses(page.Products),
		"pagination": page.Pagination,
	})
}

// HandleGetProductByID returns a single active product. Signed-in callers
// also learn whether it is in their favorites.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	data := fiber.Map{"product": newProductResponse(product)}
	if user := middleware.CurrentUser(c); user != nil {
		favorited, err := h.favorites.IsFavorited(c.UserContext(), user.ID, product.ID)
		if err != nil {
			return err
		}
		data["isFavorited"] = favorited
	}
	return respond(c, fiber.StatusOK, "", data)
}

// HandleGetCategories returns the category filter values.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", fiber.Map{"categories": h.products.Categories()})
}

// HandleCreateProduct creates a product owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	fields, image, err := h.parseProductFields(c)
	if err != nil {
		return err
	}
	upload := h.newUpload(c, image)

	in := services.ProductInput{Price: fields.Price, Stock: fields.Stock, UploadImage: upload.callback()}
	if fields.Title != nil {
		in.Title = *fields.Title
	}
	if fields.Description != nil {
		in.Description = *fields.Description
	}
	if fields.Category != nil {
		in.Category = *fields.Category
	}
	if fields.Tags != nil {
		in.Tags = *fields.Tags
	}
	if fields.Image != nil {
		in.Image = *fields.Image
	}

	product, err := h.products.Create(c.UserContext(), in, user)
	if err != nil {
		upload.discard()
		return err
	}
	return respond(c, fiber.StatusCreated, "Product created successfully", fiber.Map{"product": newProductResponse(product)})
}

// HandleUpdateProduct applies a partial update for the seller or an admin.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	fields, image, err := h.parseProductFields(c)
	if err != nil {
		return err
	}
	upload := h.newUpload(c, image)

	patch := services.ProductPatch{
		Title:       fields.Title,
		Price:       fields.Price,
		Description: fields.Description,
		Category:    fields.Category,
		Stock:       fields.Stock,
		Tags:        fields.Tags,
		Image:       fields.Image,
		UploadImage: upload.callback(),
	}
	product, err := h.products.Update(c.UserContext(), c.Params("id"), patch, user)
	if err != nil {
		upload.discard()
		return err
	}
	return respond(c, fiber.StatusOK, "Product updated successfully", fiber.Map{"product": newProductResponse(product)})
}

// HandleDeleteProduct soft-deletes a product for the seller or an admin.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	if err := h.products.SoftDelete(c.UserContext(), c.Params("id"), user); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product deleted successfully", nil)
}

// HandleRestoreProduct reactivates a soft-deleted product.
func (h *ProductHandler) HandleRestoreProduct(c *fiber.Ctx) error {
	product, err := h.products.Restore(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product restored successfully", fiber.Map{"product": newProductResponse(product)})
}

// productFields holds the product values sent in a request; every field is
// optional at the transport level.
type productFields struct {
	Title       *string   `json:"title"`
	Price       *float64  `json:"price"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Stock       *int      `json:"stock"`
	Tags        *[]string `json:"tags"`
	Image       *string   `json:"image"`
}

// tagList accepts either a JSON array or a comma-separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tags must be an array or a comma-separated string")
	}
	*t = services.SplitTags(raw)
	return nil
}

type productJSON struct {
	Title       *string  `json:"title"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Tags        *tagList `json:"tags"`
	Image       *string  `json:"image"`
}

// parseProductFields reads a product payload from a JSON, urlencoded or
// multipart body. A multipart image is checked but not yet stored.
func (h *ProductHandler) parseProductFields(c *fiber.Ctx) (productFields, *multipart.FileHeader, error) {
	var fields productFields
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))

	if strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
		var body productJSON
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return fields, nil, apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
		}
		fields = productFields{
			Title:       body.Title,
			Price:       body.Price,
			Description: body.Description,
			Category:    body.Category,
			Stock:       body.Stock,
			Image:       body.Image,
		}
		if body.Tags != nil {
			tags := []string(*body.Tags)
			fields.Tags = &tags
		}
		return fields, nil, nil
	}

	fields, err := parseFormFields(c)
	if err != nil {
		return fields, nil, err
	}
	if h.images == nil {
		return fields, nil, nil
	}
	image, err := h.images.Receive(c)
	if err != nil {
		return fields, nil, err
	}
	return fields, image, nil
}

// imageUpload stores a received image once the product change has been
// authorized and validated, and removes it again if the change fails.
type imageUpload struct {
	c      *fiber.Ctx
	images *ImageStore
	header *multipart.FileHeader
	stored string
}

func (h *ProductHandler) newUpload(c *fiber.Ctx, header *multipart.FileHeader) *imageUpload {
	return &imageUpload{c: c, images: h.images, header: header}
}

// callback returns the deferred store step, or nil when no image was sent.
func (u *imageUpload) callback() func() (string, error) {
	if u.header == nil || u.images == nil {
		return nil
	}
	return u.store
}

func (u *imageUpload) store() (string, error) {
	url, name, err := u.images.Store(u.c, u.header)
	if err != nil {
		return "", err
	}
	u.stored = name
	return url, nil
}

func (u *imageUpload) discard() {
	if u.stored == "" {
		return
	}
	if err := u.images.Discard(u.stored); err == nil {
		u.stored = ""
	}
}

func parseFormFields(c *fiber.Ctx) (productFields, error) {
	var fields productFields
	str := func(key string) *string {
		if v, ok := formValue(c, key); ok {
			return &v
		}
		return nil
	}
	fields.Title = str("title")
	fields.Description = str("description")
	fields.Category = str("category")
	fields.Image = str("image")

	if raw, ok := formValue(c, "price"); ok && strings.TrimSpace(raw) != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsInf(price, 0) || math.IsNaN(price) {
			return fields, apperrors.Validation("price must be a number")
		}
		fields.Price = &price
	}
	if raw, ok := formValue(c, "stock"); ok && strings.TrimSpace(raw) != "" {
		stock, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fields, apperrors.Validation("stock must be an integer")
		}
		fields.Stock = &stock
	}
	if raw, ok := formValue(c, "tags"); ok {
		tags := services.SplitTags(raw)
		fields.Tags = &tags
	}
	return fields, nil
}

// formValue returns a multipart or urlencoded field and whether it was sent.
func formValue(c *fiber.Ctx, key string) (string, bool) {
	if form, err := c.MultipartForm(); err == nil {
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}
	args := c.Request().PostArgs()
	if !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}
