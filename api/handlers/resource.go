package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchresource/config"
	"github.com/meghashyamc/searchresource/logger"
	"github.com/meghashyamc/searchresource/pagination"
	"github.com/meghashyamc/searchresource/services/search"
	"github.com/meghashyamc/searchresource/validation"
)

type ResourceRequest struct {
	Query  string `form:"q" json:"q" validate:"valid_query,max=1000"`
	Limit  *int   `form:"limit" json:"limit" validate:"omitempty,max=1000"`
	Offset int    `form:"offset" json:"offset" validate:"min=0"`
}

func (r *ResourceRequest) pageRequest(resource config.Resource) pagination.Request {
	request := pagination.NewRequest()
	if resource.PageSize > 0 {
		request.Limit = resource.PageSize
	}
	if r.Limit != nil {
		request.Limit = *r.Limit
	}
	request.Offset = r.Offset

	return request
}

type sequenceFunc func(ctx context.Context, queryString string) (pagination.Sequence[search.Hit], error)

// SetupResource registers the search and autocomplete endpoints of one resource under router.
func SetupResource(router gin.IRouter, logger logger.Logger, resource config.Resource, service *search.Service, validator *validation.Validator) {
	group := router.Group("/" + resource.Name)

	group.GET("/search", handlePagedSearch(resource, logger, validator, func(ctx context.Context, queryString string) (pagination.Sequence[search.Hit], error) {
		return service.Search(ctx, resource, queryString), nil
	}))
	group.GET("/autocomplete", handlePagedSearch(resource, logger, validator, func(ctx context.Context, queryString string) (pagination.Sequence[search.Hit], error) {
		return service.Autocomplete(ctx, resource, queryString)
	}))
}

func handlePagedSearch(resource config.Resource, logger logger.Logger, validator *validation.Validator, sequenceFor sequenceFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ResourceRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from request", "resource", resource.Name, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusBadRequest, []string{"failed to extract query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate request", "resource", resource.Name, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusBadRequest, []string{err.Error()})
			return
		}

		sequence, err := sequenceFor(c.Request.Context(), request.Query)
		if err != nil {
			writeSearchError(c, logger, resource, err)
			return
		}

		pageRequest := request.pageRequest(resource)
		result, err := pagination.Paginate(sequence, pageRequest)
		if err != nil {
			writeSearchError(c, logger, resource, err)
			return
		}

		c.Header(HeaderPaginationTotalCount, strconv.Itoa(result.TotalCount))
		c.JSON(http.StatusOK, newPagedResponse(c.Request.URL, pageRequest, result))
	}
}

func writeSearchError(c *gin.Context, logger logger.Logger, resource config.Resource, err error) {
	c.Abort()

	switch {
	case errors.Is(err, pagination.ErrInvalidParameter):
		logger.Warn("invalid page request", "resource", resource.Name, "err", err.Error())
		writeResponse(c, nil, http.StatusBadRequest, []string{err.Error()})
	case errors.Is(err, pagination.ErrPageNotFound):
		logger.Warn("page not found", "resource", resource.Name, "err", err.Error())
		writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
	case errors.Is(err, search.ErrAutocompleteNotConfigured):
		logger.Warn("autocomplete requested for resource without autocomplete field", "resource", resource.Name)
		writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
	default:
		logger.Error("search failed", "resource", resource.Name, "err", err.Error())
		writeResponse(c, nil, http.StatusInternalServerError, []string{"search failed"})
	}
}
