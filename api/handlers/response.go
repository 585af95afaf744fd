package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchresource/pagination"
	"github.com/meghashyamc/searchresource/services/search"
)

const HeaderPaginationTotalCount = "X-Pagination-Total-Count"

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.JSON(statusCode, nil)
		return

	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

type Meta struct {
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	Previous   *string `json:"previous"`
	Next       *string `json:"next"`
	TotalCount int     `json:"total_count"`
}

type PagedResponse struct {
	Objects []json.RawMessage `json:"objects"`
	Meta    Meta              `json:"meta"`
}

func newPagedResponse(requestURL *url.URL, request pagination.Request, result *pagination.Result[search.Hit]) PagedResponse {
	objects := make([]json.RawMessage, len(result.Items))
	for i, hit := range result.Items {
		objects[i] = hit.Object
	}

	return PagedResponse{
		Objects: objects,
		Meta: Meta{
			Limit:      request.Limit,
			Offset:     request.Offset,
			Previous:   pageURL(requestURL, result.Previous),
			Next:       pageURL(requestURL, result.Next),
			TotalCount: result.TotalCount,
		},
	}
}

// pageURL points at the same route as requestURL with every other query
// parameter kept and limit and offset replaced by page's.
func pageURL(requestURL *url.URL, page *pagination.Request) *string {
	if page == nil {
		return nil
	}

	params := requestURL.Query()
	params.Set("limit", strconv.Itoa(page.Limit))
	params.Set("offset", strconv.Itoa(page.Offset))

	link := (&url.URL{Path: requestURL.Path, RawQuery: params.Encode()}).String()
	return &link
}
