package fieldcrypt

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAEAD(t *testing.T) {
	c, err := New("test-secret")
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		enc, err := c.Encrypt("Jane Doe")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(enc, prefix))
		assert.NotContains(t, enc, "Jane")

		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", dec)
	})

	t.Run("nonce differs per call", func(t *testing.T) {
		a, _ := c.Encrypt("same")
		b, _ := c.Encrypt("same")
		assert.NotEqual(t, a, b)
	})

	t.Run("empty passes through", func(t *testing.T) {
		enc, err := c.Encrypt("")
		require.NoError(t, err)
		assert.Empty(t, enc)
	})

	t.Run("legacy plaintext passes through on decrypt", func(t *testing.T) {
		dec, err := c.Decrypt("+1 555 0100")
		require.NoError(t, err)
		assert.Equal(t, "+1 555 0100", dec)
	})

	t.Run("already encrypted is not double encrypted", func(t *testing.T) {
		enc, _ := c.Encrypt("value")
		again, err := c.Encrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, enc, again)
	})

	t.Run("tampered value is rejected", func(t *testing.T) {
		enc, _ := c.Encrypt("value")
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(enc, prefix))
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff
		_, err = c.Decrypt(prefix + base64.StdEncoding.EncodeToString(raw))
		assert.ErrorIs(t, err, ErrTampered)
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		enc, _ := c.Encrypt("value")
		other, err := New("other-secret")
		require.NoError(t, err)
		_, err = other.Decrypt(enc)
		assert.ErrorIs(t, err, ErrTampered)
	})
}

func TestSelfTest(t *testing.T) {
	c, err := New("k")
	require.NoError(t, err)
	assert.NoError(t, SelfTest(c))
}

func TestEmptySecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestFields(t *testing.T) {
	c, err := New("k")
	require.NoError(t, err)
	name, phone := "Ann", "123"

	require.NoError(t, EncryptFields(c, &name, &phone))
	assert.NotEqual(t, "Ann", name)

	require.NoError(t, DecryptFields(c, &name, &phone))
	assert.Equal(t, "Ann", name)
	assert.Equal(t, "123", phone)
}
