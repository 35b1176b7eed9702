package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/middleware"
	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/store"
)

//
// --- Product Handlers ---
//

// ProductDataInput is the JSON carried in the 'productData' form field of
// the multipart add-product request (images ride alongside as files).
type ProductDataInput struct {
	Name        string   `json:"name" binding:"required"`
	Description []string `json:"description"`
	Category    string   `json:"category" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	OfferPrice  float64  `json:"offerPrice" binding:"required,gt=0"`
}

// AddProduct is the handler for POST /api/product/add (seller-only)
func (h *Handlers) AddProduct(c *gin.Context) {
	// 1. --- Get Seller ID ---
	sellerID := c.MustGet(middleware.CtxSellerID).(primitive.ObjectID)

	// 2. --- Parse the productData JSON field ---
	raw := c.PostForm("productData")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing productData"})
		return
	}
	var input ProductDataInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid productData: " + err.Error()})
		return
	}
	if input.Name == "" || input.Category == "" || input.OfferPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid productData"})
		return
	}

	// 3. --- Upload Images to the Asset Store ---
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid form data"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "At least one image is required"})
		return
	}

	imageURLs := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read image"})
			return
		}
		url, err := h.Uploader.Upload(c.Request.Context(), f)
		f.Close()
		if err != nil {
			h.Log.Error("Image upload failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to upload image"})
			return
		}
		imageURLs = append(imageURLs, url)
	}

	// 4. --- Persist the Product ---
	now := time.Now()
	product := &models.Product{
		SellerID:    sellerID,
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		OfferPrice:  input.OfferPrice,
		Images:      imageURLs,
		InStock:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Products.Insert(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to add product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product Added Successfully"})
}

// ProductList is the handler for GET /api/product/list (public)
func (h *Handlers) ProductList(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

type ProductByIDInput struct {
	ID string `json:"id" binding:"required"`
}

// ProductByID is the handler for POST /api/product/id
func (h *Handlers) ProductByID(c *gin.Context) {
	var input ProductByIDInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	id, err := primitive.ObjectIDFromHex(input.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	product, err := h.Products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

type ChangeStockInput struct {
	ID      string `json:"id" binding:"required"`
	InStock *bool  `json:"inStock" binding:"required"`
}

// ChangeStock is the handler for POST /api/product/stock (seller-only).
// A seller may only change stock on their own products.
func (h *Handlers) ChangeStock(c *gin.Context) {
	sellerID := c.MustGet(middleware.CtxSellerID).(primitive.ObjectID)

	var input ChangeStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	id, err := primitive.ObjectIDFromHex(input.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id"})
		return
	}

	product, err := h.Products.GetByID(c.Request.Context(), id)
	if err != nil || product.SellerID != sellerID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Unauthorized or invalid product"})
		return
	}

	if err := h.Products.SetStock(c.Request.Context(), id, *input.InStock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Stock Updated"})
}

// SellerProducts is the handler for GET /api/product/seller
func (h *Handlers) SellerProducts(c *gin.Context) {
	sellerID := c.MustGet(middleware.CtxSellerID).(primitive.ObjectID)

	products, err := h.Products.ListBySeller(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}
