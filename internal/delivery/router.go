package delivery

import (
	"strings"

	"catalog_service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	ProductHandler  *ProductHandler
	CategoryHandler *CategoryHandler
	JWTSecret       []byte
	CORSOrigins     []string
	MediaRoot       string
	MediaURL        string
	Logger          *logrus.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSOrigins))
	}
	router.Use(middleware.Authenticate(cfg.JWTSecret, cfg.Logger))

	router.GET(Pattern(RouteHome), ServeHome)
	if cfg.MediaRoot != "" {
		router.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaRoot)
	}

	cfg.CategoryHandler.RegisterRoutes(router)
	cfg.ProductHandler.RegisterRoutes(router, middleware.RequireLogin(cfg.Logger))
	return router
}
