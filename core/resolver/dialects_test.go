package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedDialect struct {
	testDialect
	name string
}

func (d namedDialect) Name() string { return d.name }

func TestRegisterDialect(t *testing.T) {
	d := namedDialect{name: "registry-test"}
	RegisterDialect(d)

	found, err := LookupDialect("registry-test")
	require.NoError(t, err)
	assert.Equal(t, d, found)
	assert.Contains(t, Dialects(), "registry-test")

	assert.Panics(t, func() { RegisterDialect(d) }, "registering a name twice must panic")
	assert.Panics(t, func() { RegisterDialect(nil) })
}

func TestLookupDialect_Unknown(t *testing.T) {
	_, err := LookupDialect("no-such-dialect")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dialect "no-such-dialect"`)
}
