package htypes

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSection(t *testing.T) {
	text := `
	{
		"mysql": {"autocommit": false, "port": 3307},
		"mysql.port": 3308,
		"other": 1
	}`
	v := make(Map)
	require.NoError(t, jsoniter.Unmarshal([]byte(text), &v))

	s, ok, err := v.Section("mysql")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, false, s["autocommit"])
	assert.EqualValues(t, 3308, s["port"])
	assert.Len(t, s, 2)

	_, ok, err = v.Section("redis")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSectionMalformed(t *testing.T) {
	for name, v := range map[string]Map{
		"string map": {"mysql": map[string]string{"database": "other"}},
		"scalar":     {"mysql": "bogus"},
		"null":       {"mysql": nil},
	} {
		t.Run(name, func(t *testing.T) {
			_, ok, err := v.Section("mysql")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "section [mysql]")
			assert.False(t, ok)
		})
	}
}
