package screening

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rekognitiontypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// ComprehendAPI is the Comprehend call used here; *comprehend.Client satisfies it.
type ComprehendAPI interface {
	DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
}

// RekognitionAPI is the Rekognition call used here; *rekognition.Client satisfies it.
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Analyzers bundles the AWS-backed implementations.
type Analyzers struct {
	Sentiment *ComprehendAnalyzer
	Faces     *RekognitionAnalyzer
}

// NewAWS loads the default credential chain for region and builds both
// analyzers.
func NewAWS(ctx context.Context, region string) (*Analyzers, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Analyzers{
		Sentiment: NewComprehendAnalyzer(comprehend.NewFromConfig(cfg)),
		Faces:     NewRekognitionAnalyzer(rekognition.NewFromConfig(cfg)),
	}, nil
}

type ComprehendAnalyzer struct {
	api ComprehendAPI
}

func NewComprehendAnalyzer(api ComprehendAPI) *ComprehendAnalyzer {
	return &ComprehendAnalyzer{api: api}
}

func (a *ComprehendAnalyzer) DetectSentiment(ctx context.Context, text string) (*Sentiment, error) {
	out, err := a.api.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: comprehendtypes.LanguageCodeEn,
	})
	if err != nil {
		return nil, fmt.Errorf("comprehend detect sentiment: %w", err)
	}
	result := &Sentiment{Label: string(out.Sentiment)}
	if s := out.SentimentScore; s != nil {
		result.Scores = SentimentScores{
			Positive: float64(aws.ToFloat32(s.Positive)),
			Negative: float64(aws.ToFloat32(s.Negative)),
			Neutral:  float64(aws.ToFloat32(s.Neutral)),
			Mixed:    float64(aws.ToFloat32(s.Mixed)),
		}
	}
	return result, nil
}

type RekognitionAnalyzer struct {
	api RekognitionAPI
}

func NewRekognitionAnalyzer(api RekognitionAPI) *RekognitionAnalyzer {
	return &RekognitionAnalyzer{api: api}
}

func (a *RekognitionAnalyzer) DetectFaces(ctx context.Context, image []byte) (*FaceAnalysis, error) {
	out, err := a.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &rekognitiontypes.Image{Bytes: image},
		Attributes: []rekognitiontypes.Attribute{rekognitiontypes.AttributeAll},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition detect faces: %w", err)
	}
	faces := make([]Face, 0, len(out.FaceDetails))
	for _, d := range out.FaceDetails {
		faces = append(faces, toFace(d))
	}
	return &FaceAnalysis{FacesDetected: len(faces), Faces: faces}, nil
}

func toFace(d rekognitiontypes.FaceDetail) Face {
	f := Face{Confidence: float64(aws.ToFloat32(d.Confidence))}
	if b := d.BoundingBox; b != nil {
		f.BoundingBox = BoundingBox{
			Width:  float64(aws.ToFloat32(b.Width)),
			Height: float64(aws.ToFloat32(b.Height)),
			Left:   float64(aws.ToFloat32(b.Left)),
			Top:    float64(aws.ToFloat32(b.Top)),
		}
	}
	if r := d.AgeRange; r != nil {
		f.AgeRange = &AgeRange{Low: aws.ToInt32(r.Low), High: aws.ToInt32(r.High)}
	}
	if d.Gender != nil {
		f.Gender = string(d.Gender.Value)
	}
	if d.Smile != nil {
		f.Smile = d.Smile.Value
	}
	if d.Eyeglasses != nil {
		f.Eyeglasses = d.Eyeglasses.Value
	}
	if d.Sunglasses != nil {
		f.Sunglasses = d.Sunglasses.Value
	}
	for _, e := range d.Emotions {
		f.Emotions = append(f.Emotions, Emotion{Type: string(e.Type), Confidence: float64(aws.ToFloat32(e.Confidence))})
	}
	return f
}
