package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	t.Cleanup(func() { Current = Trivium })

	assert.True(t, Set("midnight"))
	assert.Equal(t, "midnight", Current.Name)
	assert.Equal(t, "dark", Current.Glamour)

	assert.False(t, Set("neon"))
	assert.Equal(t, "midnight", Current.Name, "unknown names leave the theme alone")
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{"midnight", "trivium"}, List())
}
