package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/internal/screening"
	dErrors "frontdesk/pkg/domain-errors"
)

func TestNewVisitor(t *testing.T) {
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	visit := now.Add(time.Hour)

	t.Run("defaults to pre-registered", func(t *testing.T) {
		v, err := NewVisitor(CreateVisitorRequest{
			Name: " Ada ", Host: uuid.New(), Purpose: "Demo", VisitDate: &visit, Email: "ADA@Example.com",
		}, now)
		require.NoError(t, err)
		assert.Equal(t, StatusPreRegistered, v.Status)
		assert.Equal(t, "Ada", v.Name)
		assert.Equal(t, "ada@example.com", v.Email)
		assert.NotNil(t, v.AIAnalysis.SecurityConcerns)
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		_, err := NewVisitor(CreateVisitorRequest{
			Name: "Ada", Host: uuid.New(), Purpose: "Demo", VisitDate: &visit, Email: "not-an-email",
		}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestTransitions(t *testing.T) {
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		from       Status
		checkIn    bool
		checkOut   bool
		canApprove bool
	}{
		{StatusPreRegistered, true, false, true},
		{StatusApproved, true, false, false},
		{StatusRejected, false, false, false},
		{StatusCheckedIn, false, true, false},
		{StatusCheckedOut, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			v := &Visitor{Status: tt.from}
			assert.Equal(t, tt.checkIn, v.CanCheckIn() == nil)
			assert.Equal(t, tt.checkOut, v.CanCheckOut() == nil)

			approved := StatusApproved
			err := v.Apply(UpdateVisitorRequest{Status: &approved}, now)
			if tt.canApprove || tt.from == StatusApproved {
				assert.NoError(t, err)
			} else {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
			}
		})
	}
}

func TestFlag(t *testing.T) {
	v := &Visitor{AIAnalysis: AIAnalysis{SecurityConcerns: []string{}}}
	v.Flag(&screening.Sentiment{Label: screening.SentimentNegative, Scores: screening.SentimentScores{Negative: 0.75}})
	assert.Equal(t, []string{screening.ConcernNegativeSentiment}, v.AIAnalysis.SecurityConcerns)

	c := v.Clone()
	c.AIAnalysis.Sentiment.Label = screening.SentimentPositive
	assert.Equal(t, screening.SentimentNegative, v.AIAnalysis.Sentiment.Label)
}
