package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchresource/api/handlers"
	"github.com/meghashyamc/searchresource/config"
	"github.com/meghashyamc/searchresource/logger"
	"github.com/meghashyamc/searchresource/services/search"
	"github.com/meghashyamc/searchresource/validation"
)

const apiPrefix = "/api/v1"

// docCounter reports how many documents the search index holds.
type docCounter interface {
	GetDocCount() (uint64, error)
}

func setupRoutes(router *gin.Engine, logger logger.Logger, resources []config.Resource, service *search.Service, index docCounter, validator *validation.Validator, throttle *throttle) {
	router.GET("/health", health(logger, index))

	api := router.Group(apiPrefix)
	api.Use(throttleMiddleware(logger, throttle))
	for _, resource := range resources {
		handlers.SetupResource(api, logger, resource, service, validator)
		logger.Info("registered resource", "name", resource.Name, "model", resource.Model, "autocomplete_field", resource.AutocompleteField)
	}
}

func health(logger logger.Logger, index docCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := index.GetDocCount()
		if err != nil {
			logger.Error("could not count indexed documents", "err", err.Error())
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "indexed_documents": count})
	}
}

func newRouter(logger logger.Logger) *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.HandleMethodNotAllowed = true
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
