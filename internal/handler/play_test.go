package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = parseIDList("3")
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, ids)

	ids, err = parseIDList("1,2,5")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 5}, ids)

	ids, err = parseIDList(" 1 , 2 ")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)

	_, err = parseIDList("1,drama")
	assert.Error(t, err)
}
