package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ n int }

func TestClassNames(t *testing.T) {
	c := Class{FullName: "Mafi.Core.Products.ProductsManager"}
	assert.Equal(t, "ProductsManager", c.Name())
	assert.Equal(t, "Mafi.Core.Products", c.Namespace())

	bare := Class{FullName: "Global"}
	assert.Equal(t, "Global", bare.Name())
	assert.Empty(t, bare.Namespace())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(Class{FullName: "A.One"}, Class{FullName: "A.Two"}))
	require.ErrorIs(t, r.Register(Class{FullName: "A.One"}), errDuplicateClass)
	require.ErrorIs(t, r.Register(Class{}), errEmptyName)

	require.NoError(t, r.Register(Class{FullName: "A.Three"}))
	assert.Equal(t, 3, r.Len())

	assert.True(t, r.Unregister("A.Two"))
	assert.False(t, r.Unregister("A.Two"))

	names := make([]string, 0, r.Len())
	for _, c := range r.Classes() {
		names = append(names, c.FullName)
	}

	assert.Equal(t, []string{"A.One", "A.Three"}, names)

	// Index must stay consistent after removal.
	assert.True(t, r.Unregister("A.Three"))
	assert.Equal(t, 1, r.Len())
}

func TestFieldAndProperty(t *testing.T) {
	var current *widget

	f := Field("Current", &current)
	assert.Equal(t, TypeOf[*widget](), f.Type)
	assert.Nil(t, f.Get().(*widget))

	current = &widget{n: 7}
	assert.Equal(t, 7, f.Get().(*widget).n)

	p := Property("Instance", func() *widget { return current })
	assert.Same(t, current, p.Get())
}
