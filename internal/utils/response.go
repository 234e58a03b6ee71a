package utils

import "github.com/gofiber/fiber/v2"

// SuccessBody is the envelope for successful responses.
type SuccessBody struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

// ErrorBody is the envelope for failed responses. Details carries
// machine-readable context such as the conflicting field.
type ErrorBody struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"pageSize"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// SuccessResponse sends a success response
func SuccessResponse(c *fiber.Ctx, code int, data interface{}) error {
	return c.Status(code).JSON(SuccessBody{Data: data})
}

// SuccessWithMetaResponse sends a success response with meta
func SuccessWithMetaResponse(c *fiber.Ctx, code int, data interface{}, meta interface{}) error {
	return c.Status(code).JSON(SuccessBody{Data: data, Meta: meta})
}

// ErrorResponse sends an error response
func ErrorResponse(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(ErrorBody{Error: message})
}

// ErrorWithDetailsResponse sends an error response with additional details
func ErrorWithDetailsResponse(c *fiber.Ctx, code int, message string, details map[string]interface{}) error {
	return c.Status(code).JSON(ErrorBody{Error: message, Details: details})
}

// CreatePaginationMeta creates pagination metadata
func CreatePaginationMeta(page, pageSize int, total int64) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}

	return PaginationMeta{
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Pagination bounds shared by the list endpoints.
const (
	DefaultMoviePageSize   = 12
	DefaultCatalogPageSize = 50
	MaxPageSize            = 100
	MaxPage                = 100000
)

// NormalizePage clamps page to 1..MaxPage and pageSize to 1..MaxPageSize,
// using fallback when pageSize is not positive.
func NormalizePage(page, pageSize, fallback int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = fallback
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
