package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name        string
		params      PaginationParams
		wantPage    int
		wantPerPage int
	}{
		{name: "defaults applied", params: PaginationParams{}, wantPage: 1, wantPerPage: 20},
		{name: "negative page", params: PaginationParams{Page: -3, PerPage: 10}, wantPage: 1, wantPerPage: 10},
		{name: "per page capped", params: PaginationParams{Page: 2, PerPage: 500}, wantPage: 2, wantPerPage: 100},
		{name: "valid untouched", params: PaginationParams{Page: 3, PerPage: 25}, wantPage: 3, wantPerPage: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Validate()
			assert.Equal(t, tt.wantPage, tt.params.Page)
			assert.Equal(t, tt.wantPerPage, tt.params.PerPage)
		})
	}
}

func TestPaginationParams_Offset(t *testing.T) {
	assert.Equal(t, 0, PaginationParams{Page: 1, PerPage: 20}.Offset())
	assert.Equal(t, 40, PaginationParams{Page: 3, PerPage: 20}.Offset())
}

func TestNewPage(t *testing.T) {
	params := PaginationParams{Page: 2, PerPage: 10}
	page := NewPage([]string{"a", "b"}, 25, params)

	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

func TestNewPage_Empty(t *testing.T) {
	page := NewPage[string](nil, 0, PaginationParams{Page: 1, PerPage: 20})

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestNewPage_LastPage(t *testing.T) {
	page := NewPage([]int{1}, 21, PaginationParams{Page: 3, PerPage: 10})

	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)
}
