package delivery

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"catalog_service/internal/domain"
	"catalog_service/internal/middleware"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxFormMemory = 32 << 20

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

// formView is a form as handed to the presentation layer.
type formView struct {
	Values usecase.ProductForm `json:"values"`
	Errors map[string][]string `json:"errors"`
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter, requireLogin gin.HandlerFunc) {
	router.GET(Pattern(RouteProducts), h.ListProducts)
	router.GET(Pattern(RouteProductDetail), h.GetProductByID)

	owner := router.Group("", requireLogin)
	{
		owner.GET(Pattern(RouteAddProduct), h.AddProductForm)
		owner.POST(Pattern(RouteAddProduct), h.CreateProduct)
		owner.GET(Pattern(RouteEditProduct), h.EditProductForm)
		owner.POST(Pattern(RouteEditProduct), h.UpdateProduct)
		owner.POST(Pattern(RouteDeleteProduct), h.DeleteProduct)
		owner.DELETE(Pattern(RouteDeleteProduct), h.DeleteProduct)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[len(values)-1]
		}
	}

	listing, err := h.useCase.ListProducts(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, domain.ErrEmptySearch) {
			RedirectResponse(c, Reverse(RouteProducts), ErrorMessage(domain.MsgNoSearchCriteria))
			return
		}
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to list products: %v", err)
		ErrorResponse(c, statusCode, "Failed to retrieve products: "+clientMessage(err))
		return
	}

	h.log.Infof("Retrieved %d products", len(listing.Products))
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", listing)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.useCase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to retrieve product")
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", gin.H{"product": product})
}

func (h *ProductHandler) AddProductForm(c *gin.Context) {
	if err := h.useCase.AuthorizeOwner(middleware.IsOwner(c)); err != nil {
		h.fail(c, err, "Failed to open product form")
		return
	}
	SuccessResponse(c, http.StatusOK, "Add product", gin.H{
		"form": formView{Values: usecase.NewProductForm(nil), Errors: map[string][]string{}},
	})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	isOwner := middleware.IsOwner(c)
	if err := h.useCase.AuthorizeOwner(isOwner); err != nil {
		h.fail(c, err, "Failed to create product")
		return
	}

	payload, cleanup, err := bindProductPayload(c)
	if err != nil {
		h.log.Errorf("Failed to bind form for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer cleanup()

	created, err := h.useCase.CreateProduct(c.Request.Context(), isOwner, payload)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			form := usecase.NewProductForm(nil)
			form.Apply(payload)
			FormErrorResponse(c, "Failed to create product: "+verr.Error(),
				gin.H{"form": formView{Values: form, Errors: verr.Fields}},
				ErrorMessage("Please ensure the form is valid"))
			return
		}
		h.fail(c, err, "Failed to create product")
		return
	}

	h.log.Infof("Product created successfully: ID %d, Name %s", created.ID, created.Name)
	RedirectResponse(c, Reverse(RouteProductDetail, created.ID), SuccessMessage("Successfully added the product"))
}

func (h *ProductHandler) EditProductForm(c *gin.Context) {
	isOwner := middleware.IsOwner(c)
	if err := h.useCase.AuthorizeOwner(isOwner); err != nil {
		h.fail(c, err, "Failed to open product form")
		return
	}
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.useCase.GetProductForEdit(c.Request.Context(), isOwner, id)
	if err != nil {
		h.fail(c, err, "Failed to open product form")
		return
	}

	SuccessResponse(c, http.StatusOK, "Edit product", gin.H{
		"form":    formView{Values: usecase.NewProductForm(product), Errors: map[string][]string{}},
		"product": product,
	}, InfoMessage(fmt.Sprintf("You are editing %s", product.Name)))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	isOwner := middleware.IsOwner(c)
	if err := h.useCase.AuthorizeOwner(isOwner); err != nil {
		h.fail(c, err, "Failed to update product")
		return
	}
	id, ok := h.productID(c)
	if !ok {
		return
	}

	payload, cleanup, err := bindProductPayload(c)
	if err != nil {
		h.log.Errorf("Failed to bind form for update product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer cleanup()

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), isOwner, id, payload)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			h.formError(c, id, payload, verr)
			return
		}
		h.fail(c, err, "Failed to update product")
		return
	}

	h.log.Infof("Product updated successfully: ID %d", updated.ID)
	RedirectResponse(c, Reverse(RouteProductDetail, updated.ID), SuccessMessage("Product updated"))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	isOwner := middleware.IsOwner(c)
	if err := h.useCase.AuthorizeOwner(isOwner); err != nil {
		h.fail(c, err, "Failed to delete product")
		return
	}
	id, ok := h.productID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), isOwner, id); err != nil {
		h.fail(c, err, "Failed to delete product")
		return
	}

	h.log.Infof("Product deleted successfully: ID %d", id)
	RedirectResponse(c, Reverse(RouteProducts), SuccessMessage("Product deleted"))
}

// formError re-renders the edit form over the unchanged stored product.
func (h *ProductHandler) formError(c *gin.Context, id int, payload domain.ProductPayload, verr *domain.ValidationError) {
	product, err := h.useCase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to update product")
		return
	}
	form := usecase.NewProductForm(product)
	form.Apply(payload)
	FormErrorResponse(c, "Failed to update product: "+verr.Error(),
		gin.H{"form": formView{Values: form, Errors: verr.Fields}, "product": product},
		ErrorMessage("There was a problem with your form"),
		InfoMessage(fmt.Sprintf("You are editing %s", product.Name)))
}

// fail maps a use case error onto the response: refused mutations go home
// with the owners-only message, everything else gets a status code.
func (h *ProductHandler) fail(c *gin.Context, err error, prefix string) {
	var authErr *domain.AuthorizationError
	if errors.As(err, &authErr) {
		h.log.Warnf("%s: %v", prefix, err)
		RedirectResponse(c, Reverse(RouteHome), ErrorMessage(authErr.Message))
		return
	}
	statusCode := mapErrorToStatus(err)
	if statusCode >= http.StatusInternalServerError {
		h.log.Errorf("%s: %v", prefix, err)
	} else {
		h.log.Warnf("%s: %v", prefix, err)
	}
	ErrorResponse(c, statusCode, prefix+": "+clientMessage(err))
}

func (h *ProductHandler) productID(c *gin.Context) (int, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid product ID parameter: %s", idStr)
		ErrorResponse(c, http.StatusNotFound, "Product not found")
		return 0, false
	}
	return id, true
}

// bindProductPayload reads a urlencoded or multipart product form. Only
// submitted fields are set. The returned cleanup closes the uploaded file.
func bindProductPayload(c *gin.Context) (domain.ProductPayload, func(), error) {
	var payload domain.ProductPayload
	noop := func() {}

	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return payload, noop, err
	}

	field := func(name string) *string {
		if values, ok := c.Request.PostForm[name]; ok && len(values) > 0 {
			v := values[0]
			return &v
		}
		return nil
	}
	payload.Category = field("category")
	payload.SKU = field("sku")
	payload.Name = field("name")
	payload.Description = field("description")
	payload.HasSizes = field("has_sizes")
	payload.Price = field("price")
	payload.Rating = field("rating")
	payload.ImageURL = field("image_url")
	switch c.Request.PostForm.Get("image-clear") {
	case "on", "true", "1":
		payload.ClearImage = true
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return payload, noop, nil
		}
		return payload, noop, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return payload, noop, err
	}
	payload.Image = &domain.ImageUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	}
	return payload, func() { closeQuietly(file) }, nil
}

func closeQuietly(c io.Closer) { _ = c.Close() }
