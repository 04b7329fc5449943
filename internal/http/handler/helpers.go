package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/squadup/admin-api/internal/repository"
)

func decodeJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parsePageRequest reads the shared list controls from the query
// string. Out-of-range values are an error rather than silently
// clamped, so a mistyped admin UI query fails loudly.
func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	req := repository.PageRequest{
		Page:     repository.DefaultPage,
		PageSize: repository.DefaultPageSize,
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Sort:     strings.TrimSpace(r.URL.Query().Get("sort")),
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return repository.PageRequest{}, fmt.Errorf("page must be a positive integer")
		}
		req.Page = page
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return repository.PageRequest{}, fmt.Errorf("page_size must be a positive integer")
		}
		if size > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be at most %d", repository.MaxPageSize)
		}
		req.PageSize = size
	}
	return req, nil
}

func paginatedData[T any](res *repository.PageResult[T]) map[string]any {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return map[string]any{
		"items":       items,
		"page":        res.Page,
		"page_size":   res.PageSize,
		"total":       res.Total,
		"total_pages": res.TotalPages,
	}
}
