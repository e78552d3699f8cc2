package controllers

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	maxPageLimit = 100
	// maxPageNumber keeps page*limit well inside int range
	maxPageNumber = 1_000_000
)

// Paginated wraps one page of a listing
type Paginated[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageRequest is a parsed ?page=&limit= pair
type pageRequest struct {
	Number int
	Limit  int
}

func (p pageRequest) Page() services.Page {
	return services.Page{Limit: p.Limit, Offset: (p.Number - 1) * p.Limit}
}

// parsePage reads ?page (1-based) and ?limit, falling back to defaultLimit
func parsePage(c *gin.Context, defaultLimit int) (pageRequest, error) {
	p := pageRequest{Number: 1, Limit: defaultLimit}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageNumber {
			return p, fmt.Errorf("invalid page %q", raw)
		}
		p.Number = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, fmt.Errorf("invalid limit %q", raw)
		}
		p.Limit = min(n, maxPageLimit)
	}
	return p, nil
}

// pageURL returns the absolute URL of the current request pointing at page n
func pageURL(c *gin.Context, n int) *string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	query := c.Request.URL.Query()
	if n == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(n))
	}

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: query.Encode()}
	s := u.String()
	return &s
}

func paginate[T any](c *gin.Context, p pageRequest, total int64, results []T) Paginated[T] {
	out := Paginated[T]{Count: total, Results: results}
	if out.Results == nil {
		out.Results = []T{}
	}
	if int64(p.Number*p.Limit) < total {
		out.Next = pageURL(c, p.Number+1)
	}
	if p.Number > 1 {
		out.Previous = pageURL(c, p.Number-1)
	}
	return out
}
