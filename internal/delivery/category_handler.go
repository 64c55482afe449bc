package delivery

import (
	"net/http"
	"net/url"
	"strconv"

	"catalog_service/internal/domain"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

// categoryView is a category with the link to its filtered product listing.
type categoryView struct {
	domain.Category
	Label       string `json:"display_name"`
	ProductsURL string `json:"products_url"`
}

func newCategoryView(category domain.Category) categoryView {
	query := url.Values{usecase.ParamCategory: {category.Name}}
	return categoryView{
		Category:    category,
		Label:       category.DisplayName(),
		ProductsURL: Reverse(RouteProducts) + "?" + query.Encode(),
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	router.GET(Pattern(RouteCategories), h.ListCategories)
	router.GET(Pattern(RouteCategory), h.GetCategoryByID)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid category ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusNotFound, "Category not found")
		return
	}

	category, err := h.useCase.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to get category by ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve category: "+clientMessage(err))
		return
	}

	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", gin.H{"category": newCategoryView(*category)})
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to list categories: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve categories: "+clientMessage(err))
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, newCategoryView(category))
	}
	h.log.Infof("Retrieved %d categories", len(views))
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", gin.H{"categories": views})
}
