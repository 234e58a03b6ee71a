package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name                   string
		page, size, fallback   int
		wantPage, wantPageSize int
	}{
		{"defaults", 0, 0, DefaultMoviePageSize, 1, 12},
		{"catalog default", 1, 0, DefaultCatalogPageSize, 1, 50},
		{"negative values", -3, -1, DefaultMoviePageSize, 1, 12},
		{"capped", 2, 500, DefaultMoviePageSize, 2, MaxPageSize},
		{"kept", 4, 25, DefaultMoviePageSize, 4, 25},
		{"huge page", math.MaxInt, MaxPageSize, DefaultMoviePageSize, MaxPage, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := NormalizePage(tt.page, tt.size, tt.fallback)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, size)
		})
	}
}

func TestCreatePaginationMeta(t *testing.T) {
	meta := CreatePaginationMeta(2, 12, 30)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)

	empty := CreatePaginationMeta(1, 12, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrevious)
}

func TestSanitizeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                      "/admin",
		"/admin/categories":     "/admin/categories",
		"/admin?tab=picks":      "/admin?tab=picks",
		"https://evil.example":  "/admin",
		"//evil.example/path":   "/admin",
		"/\\evil.example":       "/admin",
		"admin":                 "/admin",
		"/admin\r\nSet-Cookie:": "/admin",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeRedirect(in), "input %q", in)
	}
}

type validatedRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Rank     *int   `json:"rank" validate:"omitempty,min=1,max=3"`
}

func TestValidateStruct(t *testing.T) {
	four := 4
	err := ValidateStruct(validatedRequest{Email: "nope", Password: "short", Rank: &four})
	var verr *RequestValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Error(), "email must be a valid email address")
	assert.Contains(t, verr.Error(), "password must be at least 8 characters")
	assert.Contains(t, verr.Error(), "rank must be at most 3")

	two := 2
	assert.NoError(t, ValidateStruct(validatedRequest{Email: "a@b.co", Password: "longenough", Rank: &two}))
}
