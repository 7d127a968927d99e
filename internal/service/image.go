package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/mealmind/mealmind-backend/config"
)

// ImageStore archives submitted meal photos to S3 so analyses can be audited
// alongside the image they were produced from.
type ImageStore struct {
	s3Config *config.S3Config
}

func NewImageStore(s3Config *config.S3Config) *ImageStore {
	return &ImageStore{s3Config: s3Config}
}

// ArchiveMealImage decodes the base64 payload and uploads it under a
// per-user, timestamped key. Returns the object key.
func (s *ImageStore) ArchiveMealImage(ctx context.Context, userID uuid.UUID, b64 string) (string, error) {
	// Tolerate data-URI prefixes from mobile clients.
	if idx := strings.Index(b64, ","); idx != -1 && strings.HasPrefix(b64, "data:") {
		b64 = b64[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}

	key := fmt.Sprintf("meals/%s/%d-%s.jpg", userID, time.Now().Unix(), uuid.New().String()[:8])
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	return key, nil
}

const mealImageURLTTL = 15 * time.Minute

// MealImageURL returns a short-lived presigned link to an archived meal
// photo.
func (s *ImageStore) MealImageURL(ctx context.Context, key string) (string, error) {
	return s.s3Config.GeneratePresignedURL(ctx, key, mealImageURLTTL)
}
