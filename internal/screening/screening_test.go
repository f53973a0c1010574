package screening_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rekognitiontypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"frontdesk/internal/screening"
	"frontdesk/internal/screening/mocks"
)

//go:generate mockgen -source=screening.go -destination=mocks/mocks.go -package=mocks SentimentAnalyzer,FaceAnalyzer,WatchlistChecker
//go:generate mockgen -source=aws.go -destination=mocks/aws_mocks.go -package=mocks ComprehendAPI,RekognitionAPI

func TestConcerns(t *testing.T) {
	tests := []struct {
		name     string
		in       screening.Sentiment
		expected []string
	}{
		{"strongly negative", screening.Sentiment{Label: "NEGATIVE", Scores: screening.SentimentScores{Negative: 0.91}}, []string{screening.ConcernNegativeSentiment}},
		{"negative at threshold", screening.Sentiment{Label: "NEGATIVE", Scores: screening.SentimentScores{Negative: 0.7}}, nil},
		{"mixed with high negative", screening.Sentiment{Label: "MIXED", Scores: screening.SentimentScores{Negative: 0.8}}, nil},
		{"positive", screening.Sentiment{Label: "POSITIVE", Scores: screening.SentimentScores{Positive: 0.99}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, screening.Concerns(tt.in))
		})
	}
}

func TestComprehendAnalyzer(t *testing.T) {
	t.Run("maps label and scores", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mocks.NewMockComprehendAPI(ctrl)
		api.EXPECT().DetectSentiment(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in *comprehend.DetectSentimentInput, _ ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error) {
				assert.Equal(t, "rude and threatening", aws.ToString(in.Text))
				assert.Equal(t, comprehendtypes.LanguageCodeEn, in.LanguageCode)
				return &comprehend.DetectSentimentOutput{
					Sentiment: comprehendtypes.SentimentTypeNegative,
					SentimentScore: &comprehendtypes.SentimentScore{
						Negative: aws.Float32(0.875),
						Positive: aws.Float32(0.125),
					},
				}, nil
			})

		got, err := screening.NewComprehendAnalyzer(api).DetectSentiment(context.Background(), "rude and threatening")
		require.NoError(t, err)
		assert.Equal(t, screening.SentimentNegative, got.Label)
		assert.InDelta(t, 0.875, got.Scores.Negative, 1e-6)
		assert.Equal(t, []string{screening.ConcernNegativeSentiment}, screening.Concerns(*got))
	})

	t.Run("wraps provider errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mocks.NewMockComprehendAPI(ctrl)
		api.EXPECT().DetectSentiment(gomock.Any(), gomock.Any()).Return(nil, errors.New("throttled"))

		_, err := screening.NewComprehendAnalyzer(api).DetectSentiment(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
	})
}

func TestRekognitionAnalyzer(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockRekognitionAPI(ctrl)
	api.EXPECT().DetectFaces(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *rekognition.DetectFacesInput, _ ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
			assert.Equal(t, []byte("jpeg-bytes"), in.Image.Bytes)
			assert.Equal(t, []rekognitiontypes.Attribute{rekognitiontypes.AttributeAll}, in.Attributes)
			return &rekognition.DetectFacesOutput{
				FaceDetails: []rekognitiontypes.FaceDetail{
					{
						Confidence: aws.Float32(99.5),
						AgeRange:   &rekognitiontypes.AgeRange{Low: aws.Int32(25), High: aws.Int32(35)},
						Smile:      &rekognitiontypes.Smile{Value: true},
						Emotions:   []rekognitiontypes.Emotion{{Type: rekognitiontypes.EmotionNameCalm, Confidence: aws.Float32(80)}},
					},
					{Confidence: aws.Float32(90)},
				},
			}, nil
		})

	got, err := screening.NewRekognitionAnalyzer(api).DetectFaces(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 2, got.FacesDetected)
	require.NotNil(t, got.Faces[0].AgeRange)
	assert.Equal(t, int32(25), got.Faces[0].AgeRange.Low)
	assert.True(t, got.Faces[0].Smile)
	assert.Equal(t, "CALM", got.Faces[0].Emotions[0].Type)
	assert.Nil(t, got.Faces[1].AgeRange)
}

func TestStaticWatchlist(t *testing.T) {
	got, err := screening.StaticWatchlist{}.CheckWatchlist(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.False(t, got.WatchlistMatch)
	assert.InDelta(t, 0.05, got.Confidence, 1e-9)
}
