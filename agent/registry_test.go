package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	m := NewManager("src", "")

	require.NoError(t, r.Register(m))
	assert.Error(t, r.Register(m), "double registration must fail")

	got, err := r.Get("src")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestRegistryParentResolution(t *testing.T) {
	r := NewRegistry()
	master := NewMaster()
	coder := NewCoder("main.py", "")

	require.NoError(t, r.Register(master))
	require.NoError(t, r.Register(coder))

	parent, err := r.Parent(coder)
	require.NoError(t, err)
	assert.Equal(t, master, parent)

	_, err = r.Parent(master)
	assert.Error(t, err, "master has no parent")
}

func TestRegistryRemoveSubtree(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewMaster()))
	require.NoError(t, r.Register(NewManager("src", "")))
	require.NoError(t, r.Register(NewCoder("src/main.py", "src")))
	require.NoError(t, r.Register(NewManager("srcother", "")))

	removed := r.RemoveSubtree("src")
	assert.Equal(t, 2, removed)

	_, err := r.Get("src/main.py")
	assert.Error(t, err)
	_, err = r.Get("srcother")
	assert.NoError(t, err, "sibling with a shared prefix must survive")
	_, err = r.Get("")
	assert.NoError(t, err, "master must survive")
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	c := NewCoder("main.py", "")
	require.NoError(t, r.Register(c))

	assert.True(t, r.Remove("main.py"))
	assert.False(t, r.Remove("main.py"))
	assert.Empty(t, r.List())
}
