package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListParamsNormalize(t *testing.T) {
	var p ListParams
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = ListParams{Page: 3, PageSize: 10}
	p.Normalize()
	assert.Equal(t, 20, p.Offset())
}
