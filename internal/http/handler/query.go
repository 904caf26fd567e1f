package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobboard/internal/repository"
)

// Query keys with a fixed meaning; any other key is an equality filter.
const (
	paramPage   = "page"
	paramLimit  = "limit"
	paramSearch = "search"
	paramSort   = "sort"
)

// parseListQuery reads pagination, search, sort and filters from the query string.
// Filters with an empty value are ignored.
func parseListQuery(c *fiber.Ctx) (repository.Query, error) {
	var q repository.Query
	for key, value := range c.Queries() {
		switch key {
		case paramPage, paramLimit:
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return q, fmt.Errorf("%s must be a non-negative integer", key)
			}
			if key == paramPage {
				q.Page = n
			} else {
				q.Limit = n
			}
		case paramSearch:
			q.Search = strings.TrimSpace(value)
		case paramSort:
			q.Sort = repository.ParseSort(value)
		default:
			if value == "" {
				continue
			}
			if q.Filters == nil {
				q.Filters = make(map[string]string)
			}
			q.Filters[key] = value
		}
	}
	return q, nil
}

// pathID returns the :id (or named) path parameter if it is a UUID.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// decodeStrict decodes a JSON body into v, rejecting unknown fields and trailing data.
func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON body")
	}
	return nil
}

// decodePatch decodes a JSON object body into a field patch. Numbers are
// kept as json.Number so large integers survive the round trip.
func decodePatch(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var patch map[string]any
	if err := dec.Decode(&patch); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON body")
	}
	return patch, nil
}
