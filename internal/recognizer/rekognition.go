package recognizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"lens/internal/config"
)

// Rekognition detects labels through AWS Rekognition, reading the blob's
// object straight from S3. Requires the s3 storage backend.
type Rekognition struct {
	client        *rekognition.Client
	bucket        string
	maxLabels     int32
	minConfidence float32
}

// NewRekognition constructs the AWS-backed recognizer. Credentials come from
// the standard AWS environment and shared config.
func NewRekognition(ctx context.Context, cfg *config.Config) (*Rekognition, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Rekognition{
		client:        rekognition.NewFromConfig(awsCfg),
		bucket:        cfg.Storage.Bucket,
		maxLabels:     int32(cfg.Recognizer.MaxLabels),
		minConfidence: float32(cfg.Recognizer.MinConfidence),
	}, nil
}

// Detect calls DetectLabels for the blob's S3 object and maps the response
// into the backend-neutral detection payload.
func (r *Rekognition) Detect(ctx context.Context, blobID string) (Detection, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(r.bucket),
				Name:   aws.String(blobID),
			},
		},
		MaxLabels:     aws.Int32(r.maxLabels),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		var invalidFormat *types.InvalidImageFormatException
		if errors.As(err, &invalidFormat) {
			return Detection{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		var tooLarge *types.ImageTooLargeException
		if errors.As(err, &tooLarge) {
			return Detection{}, fmt.Errorf("%w: %v", ErrTooLarge, err)
		}
		return Detection{}, fmt.Errorf("detect labels: %w", err)
	}

	labels := make([]DetectedLabel, 0, len(out.Labels))
	for _, label := range out.Labels {
		parents := make([]Parent, 0, len(label.Parents))
		for _, parent := range label.Parents {
			parents = append(parents, Parent{Name: aws.ToString(parent.Name)})
		}
		labels = append(labels, DetectedLabel{
			Name:       aws.ToString(label.Name),
			Confidence: float64(aws.ToFloat32(label.Confidence)),
			Parents:    parents,
		})
	}
	return Detection{Labels: labels}, nil
}
