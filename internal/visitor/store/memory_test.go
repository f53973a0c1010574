package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/internal/platform/fieldcrypt"
	"frontdesk/internal/screening"
	"frontdesk/internal/visitor/models"
	"frontdesk/pkg/platform/sentinel"
)

func newVisitor(name string) *models.Visitor {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &models.Visitor{
		ID:         uuid.New(),
		Name:       name,
		Email:      strings.ToLower(name) + "@guest.example.com",
		Phone:      "555-0101",
		Host:       uuid.New(),
		Purpose:    "Interview",
		Status:     models.StatusPreRegistered,
		VisitDate:  now,
		AIAnalysis: models.AIAnalysis{SecurityConcerns: []string{}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	v := newVisitor("Grace")
	require.NoError(t, s.Create(ctx, v))

	t.Run("returned records are copies", func(t *testing.T) {
		got, err := s.FindByID(ctx, v.ID)
		require.NoError(t, err)
		got.Status = models.StatusCheckedIn
		got.AIAnalysis.SecurityConcerns = append(got.AIAnalysis.SecurityConcerns, "x")

		again, err := s.FindByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPreRegistered, again.Status)
		assert.Empty(t, again.AIAnalysis.SecurityConcerns)
	})

	t.Run("update unknown visitor", func(t *testing.T) {
		err := s.Update(ctx, newVisitor("Nobody"))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete removes the record", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, v.ID))
		_, err := s.FindByID(ctx, v.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, v.ID), sentinel.ErrNotFound)
	})
}

func TestEncryptedStore(t *testing.T) {
	ctx := context.Background()
	cipher, err := fieldcrypt.New("visitor-test-key")
	require.NoError(t, err)
	inner := NewInMemory()
	s := NewEncrypted(inner, cipher)

	v := newVisitor("Linus")
	v.AIAnalysis.Sentiment = &screening.Sentiment{Label: screening.SentimentNeutral}
	require.NoError(t, s.Create(ctx, v))

	raw, err := inner.FindByID(ctx, v.ID)
	require.NoError(t, err)
	for _, field := range []string{raw.Name, raw.Email, raw.Phone} {
		assert.True(t, strings.HasPrefix(field, "enc:v1:"), field)
	}
	assert.Equal(t, "Interview", raw.Purpose)
	assert.Equal(t, "Linus", v.Name)

	got, err := s.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linus", got.Name)
	assert.Equal(t, "linus@guest.example.com", got.Email)
	assert.Equal(t, "555-0101", got.Phone)

	got.Notes = "updated"
	require.NoError(t, s.Update(ctx, got))
	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Linus", all[0].Name)
	assert.Equal(t, "updated", all[0].Notes)
}
