package handler

import (
	"github.com/gin-gonic/gin"
	appcatalog "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	BaseHandler
	productService *appcatalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *appcatalog.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Sellers see their own products; everyone else, anonymous callers included, sees all of them.
// @Tags         catalog
// @Produce      json
// @Param        sort_by    query string false "name, price or stock"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} APIResponse[[]ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	requester, _ := middleware.CurrentAccount(c)
	infos, err := h.productService.List(c.Request.Context(), requester, appcatalog.ListProductsInput{
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponses(infos))
}

// Get godoc
// @ID           getProduct
// @Summary      Get product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	info, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(*info))
}

// Create godoc
// @ID           createProduct
// @Summary      Add a product
// @Description  Sellers always list as themselves. Admins may set seller_id to any seller account.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	info, err := h.productService.Create(c.Request.Context(), *account, appcatalog.CreateProductInput{
		Name:     req.Name,
		Price:    *req.Price,
		Stock:    *req.Stock,
		SellerID: req.SellerID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toProductResponse(*info))
}

// Update godoc
// @ID           updateProduct
// @Summary      Update price or stock
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Product ID"
// @Param        request body UpdateProductRequest true "Fields to change"
// @Success      200 {object} APIResponse[ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id} [patch]
func (h *ProductHandler) Update(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	info, err := h.productService.Update(c.Request.Context(), *account, id, appcatalog.UpdateProductInput{
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(*info))
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Description  Orders that reference the product are kept.
// @Tags         catalog
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), *account, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
