package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nebularoute/osc"
)

func noopHandler(string, string, *osc.Message, any) bool { return true }

func TestMethodsAddRejectsPatternPath(t *testing.T) {
	var m Methods
	ok := m.Add("/foo/*", "", noopHandler, nil)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMethodsAddAppendsInOrder(t *testing.T) {
	var m Methods
	assert.True(t, m.Add("/a", "i", noopHandler, nil))
	assert.True(t, m.Add("/b", "", noopHandler, nil))
	assert.True(t, m.Add("", "", noopHandler, nil))
	require := assert.New(t)
	require.Equal(3, m.Len())
	require.Equal("/a", *m.regs[0].path)
	require.Equal("/b", *m.regs[1].path)
	require.Nil(m.regs[2].path)
}

func TestMethodsDelExactMatch(t *testing.T) {
	var m Methods
	m.Add("/a", "i", noopHandler, nil)
	m.Add("/a", "f", noopHandler, nil)
	m.Del("/a", "i")
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "f", *m.regs[0].typespec)
}

func TestMethodsDelWildcardOnlyMatchesWildcard(t *testing.T) {
	var m Methods
	m.Add("/a", "i", noopHandler, nil)
	m.Add("", "", noopHandler, nil)
	m.Del("", "")
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "/a", *m.regs[0].path)
}

func TestMethodsDelPatternMatchesEveryLiteralRegistration(t *testing.T) {
	var m Methods
	m.Add("/a/b", "", noopHandler, nil)
	m.Add("/a/c", "", noopHandler, nil)
	m.Add("/other", "", noopHandler, nil)
	m.Del("/a/*", "")
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "/other", *m.regs[0].path)
}
