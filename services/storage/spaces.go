package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// SpacesClient handles uploads of gallery images and course material to an
// S3-compatible Spaces bucket
type SpacesClient struct {
	s3Client *s3.S3
	bucket   string
	region   string
	endpoint string
	cdnURL   string
}

// SpacesConfig holds configuration for Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	CDNURL    string
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(config SpacesConfig) (*SpacesClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesClient{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		region:   config.Region,
		endpoint: config.Endpoint,
		cdnURL:   config.CDNURL,
	}, nil
}

// UploadFile uploads a public file and returns its URL
func (s *SpacesClient) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.GetFileURL(key), nil
}

// UploadBytes uploads bytes and returns the public URL
func (s *SpacesClient) UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return s.UploadFile(ctx, key, bytes.NewReader(data), contentType)
}

// DeleteFile deletes a file from the bucket
func (s *SpacesClient) DeleteFile(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetFileURL returns the public URL for a key, preferring the CDN when set
func (s *SpacesClient) GetFileURL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

// KeyFromURL extracts the object key from a URL previously returned by this
// client. Returns "" when the URL does not belong to the bucket.
func (s *SpacesClient) KeyFromURL(url string) string {
	prefixes := []string{
		fmt.Sprintf("https://%s.%s/", s.bucket, s.endpoint),
	}
	if s.cdnURL != "" {
		prefixes = append(prefixes, strings.TrimSuffix(s.cdnURL, "/")+"/")
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return ""
}

// GeneratePresignedURL returns a time-limited URL for a private object
func (s *SpacesClient) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return url, nil
}

// GenerateKey builds a collision-free object key under a prefix, keeping the
// original extension
func GenerateKey(prefix, filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
}

// GetContentType returns the content type for a filename
func GetContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
