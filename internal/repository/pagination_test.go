package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Page: 1, Limit: 10}},
		{Page{Page: -3, Limit: 0}, Page{Page: 1, Limit: 10}},
		{Page{Page: 4, Limit: 500}, Page{Page: 4, Limit: 100}},
		{Page{Page: 2, Limit: 25}, Page{Page: 2, Limit: 25}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.in.Normalize())
	}
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Total: 25, Page: 3, Limit: 10, Pages: 3}, NewPagination(25, Page{Page: 3, Limit: 10}))
	assert.Equal(t, Pagination{Total: 20, Page: 1, Limit: 10, Pages: 2}, NewPagination(20, Page{}))
	assert.Equal(t, Pagination{Total: 0, Page: 1, Limit: 10, Pages: 0}, NewPagination(0, Page{}))
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
}
