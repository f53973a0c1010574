package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/pkg/domain"
)

func TestSeedBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("skipped without credentials", func(t *testing.T) {
		created, err := SeedBootstrapAdmin(ctx, NewInMemory(), BootstrapAdmin{}, now)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("creates admin once", func(t *testing.T) {
		s := NewInMemory()
		admin := BootstrapAdmin{Name: "Root", Email: "Admin@Example.com", Password: "change-me-now"}

		created, err := SeedBootstrapAdmin(ctx, s, admin, now)
		require.NoError(t, err)
		assert.True(t, created)

		u, err := s.FindByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		assert.True(t, u.IsActive())
		assert.True(t, u.CheckPassword("change-me-now"))

		created, err = SeedBootstrapAdmin(ctx, s, admin, now)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("weak password is rejected", func(t *testing.T) {
		_, err := SeedBootstrapAdmin(ctx, NewInMemory(), BootstrapAdmin{Name: "Root", Email: "a@example.com", Password: "password1"}, now)
		assert.Error(t, err)
	})
}
