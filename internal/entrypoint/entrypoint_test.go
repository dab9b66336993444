package entrypoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFSecret(t *testing.T) {
	t.Run("hex secret is decoded", func(t *testing.T) {
		secret, generated, err := CSRFSecret("00ff10")
		require.NoError(t, err)
		assert.False(t, generated)
		assert.Equal(t, []byte{0x00, 0xff, 0x10}, secret)
	})

	t.Run("non-hex secret is used as is", func(t *testing.T) {
		secret, generated, err := CSRFSecret("not hex at all")
		require.NoError(t, err)
		assert.False(t, generated)
		assert.Equal(t, []byte("not hex at all"), secret)
	})

	t.Run("empty secret is generated", func(t *testing.T) {
		first, generated, err := CSRFSecret("")
		require.NoError(t, err)
		assert.True(t, generated)
		assert.Len(t, first, 32)

		second, _, err := CSRFSecret("")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}
