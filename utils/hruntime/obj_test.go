package hruntime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drharryhe/hasmysql/common/htypes"
)

type sample struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Ignore string `mapstructure:"-"`
	Plain  bool
	hidden int
}

func TestStrictMap2Struct(t *testing.T) {
	s := sample{Host: "localhost", Port: 3306}
	require.NoError(t, StrictMap2Struct(htypes.Map{"port": "3307"}, &s, ""))
	assert.Equal(t, "localhost", s.Host)
	assert.Equal(t, 3307, s.Port)

	err := StrictMap2Struct(htypes.Map{"hots": "x"}, &s, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hots")

	// key须与tag完全一致
	err = StrictMap2Struct(htypes.Map{"HOST": "x", "Port": 1, "plain": true}, &s, "")
	require.Error(t, err)
	assert.Equal(t, "invalid keys: HOST, Port, plain", err.Error())
	assert.Equal(t, "localhost", s.Host)

	require.NoError(t, StrictMap2Struct(htypes.Map{"Plain": true}, &s, ""))
	assert.True(t, s.Plain)
}

func TestFieldTags(t *testing.T) {
	assert.Equal(t, []string{"host", "port", "Plain"}, FieldTags(&sample{}, "mapstructure"))
}

func TestCallers(t *testing.T) {
	ss := SprintCallers(32, 3)
	require.NotEmpty(t, ss)
	assert.Contains(t, ss[0], "TestCallers")
	assert.Equal(t, "TestCallers", FuncName("github.com/drharryhe/hasmysql/utils/hruntime.TestCallers"))
}

func TestIsNil(t *testing.T) {
	var p *sample
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(p))
	assert.False(t, IsNil(sample{}))
	assert.Equal(t, "sample", GetObjectName(&sample{}))
}
