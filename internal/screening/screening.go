// Package screening runs the optional AI checks applied to visitors: sentiment
// analysis of free-text notes, face detection on photos and a watchlist probe.
package screening

import (
	"context"
)

// NegativeConcernThreshold is the negative score above which a NEGATIVE
// sentiment is flagged as a security concern.
const NegativeConcernThreshold = 0.7

const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
	SentimentMixed    = "MIXED"

	ConcernNegativeSentiment = "Highly negative sentiment detected"
)

type SentimentScores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Mixed    float64 `json:"mixed"`
}

// Sentiment is the dominant label and per-label confidence of a text.
type Sentiment struct {
	Label  string          `json:"label"`
	Scores SentimentScores `json:"scores"`
}

// Concerns derives security-concern flags from a sentiment result.
func Concerns(s Sentiment) []string {
	if s.Label == SentimentNegative && s.Scores.Negative > NegativeConcernThreshold {
		return []string{ConcernNegativeSentiment}
	}
	return nil
}

type AgeRange struct {
	Low  int32 `json:"low"`
	High int32 `json:"high"`
}

type Emotion struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type BoundingBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

// Face is the subset of face attributes surfaced to callers.
type Face struct {
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"boundingBox"`
	AgeRange    *AgeRange   `json:"ageRange,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Smile       bool        `json:"smile"`
	Eyeglasses  bool        `json:"eyeglasses"`
	Sunglasses  bool        `json:"sunglasses"`
	Emotions    []Emotion   `json:"emotions,omitempty"`
}

type FaceAnalysis struct {
	FacesDetected int    `json:"facesDetected"`
	Faces         []Face `json:"faces"`
}

type WatchlistResult struct {
	WatchlistMatch bool    `json:"watchlistMatch"`
	Confidence     float64 `json:"confidence"`
}

type SentimentAnalyzer interface {
	DetectSentiment(ctx context.Context, text string) (*Sentiment, error)
}

type FaceAnalyzer interface {
	DetectFaces(ctx context.Context, image []byte) (*FaceAnalysis, error)
}

type WatchlistChecker interface {
	CheckWatchlist(ctx context.Context, image []byte) (*WatchlistResult, error)
}

// StaticWatchlist answers every probe with a fixed low-confidence miss. It
// stands in until a trained face collection exists.
type StaticWatchlist struct{}

func (StaticWatchlist) CheckWatchlist(_ context.Context, _ []byte) (*WatchlistResult, error) {
	return &WatchlistResult{WatchlistMatch: false, Confidence: 0.05}, nil
}
