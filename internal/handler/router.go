package handler

import (
	_ "affiliate-locator/docs"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires the HTTP handlers and returns the gin engine.
func NewRouter(affiliates *AffiliateHandler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	r.SetHTMLTemplate(PageTemplate())

	r.GET("/health", Health)
	r.GET("/", affiliates.Page)

	api := r.Group("/api")
	api.GET("/affiliates", affiliates.List)
	api.DELETE("/affiliates/cache", affiliates.ClearCache)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
