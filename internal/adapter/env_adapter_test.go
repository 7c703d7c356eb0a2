package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOSEnv_LookupEnv(t *testing.T) {
	t.Setenv("AUTOCONF_TEST_ENV", "on")

	v, ok := NewOSEnv().LookupEnv("AUTOCONF_TEST_ENV")
	assert.True(t, ok)
	assert.Equal(t, "on", v)

	_, ok = NewOSEnv().LookupEnv("AUTOCONF_TEST_ENV_SURELY_UNSET")
	assert.False(t, ok)
}

func TestMapEnv_LookupEnv(t *testing.T) {
	env := MapEnv{"A": "1", "EMPTY": ""}

	v, ok := env.LookupEnv("A")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	v, ok = env.LookupEnv("EMPTY")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = env.LookupEnv("B")
	assert.False(t, ok)
}
