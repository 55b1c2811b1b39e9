package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"cvforge/internal/config"
	"cvforge/internal/logging"
	"cvforge/internal/logging/types"
)

// SpacesClient wraps the S3 client for DigitalOcean Spaces operations
type SpacesClient struct {
	client     *s3.S3
	bucketName string
	bucketURL  string
	cdnURL     string
	logger     types.Logger
}

// NewSpacesClient creates a new DigitalOcean Spaces client
func NewSpacesClient(cfg *config.Config) (*SpacesClient, error) {
	logger := logging.GetGlobalLogger()

	if cfg.Spaces.AccessKeyID == "" || cfg.Spaces.AccessKeySecret == "" {
		return nil, fmt.Errorf("DigitalOcean Spaces credentials are required")
	}

	if cfg.Spaces.BucketURL == "" {
		return nil, fmt.Errorf("DigitalOcean Spaces bucket URL is required")
	}

	// Region-based endpoint, not the bucket-prefixed URL
	endpoint := fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Spaces.Region)

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.Spaces.AccessKeyID,
			cfg.Spaces.AccessKeySecret,
			"",
		),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(cfg.Spaces.Region),
		S3ForcePathStyle: aws.Bool(false),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create DigitalOcean Spaces session: %w", err)
	}

	client := s3.New(sess)

	logger.Info("DigitalOcean Spaces client initialized", map[string]interface{}{
		"bucket_name": cfg.Spaces.BucketName,
		"region":      cfg.Spaces.Region,
		"endpoint":    endpoint,
	})

	return &SpacesClient{
		client:     client,
		bucketName: cfg.Spaces.BucketName,
		bucketURL:  cfg.Spaces.BucketURL,
		cdnURL:     cfg.Spaces.CDNEndpoint,
		logger:     logger,
	}, nil
}

// UploadResumeArtifact uploads a rendered resume PDF to DigitalOcean Spaces
// and returns its public URL.
func (sc *SpacesClient) UploadResumeArtifact(exportID string, pdfData []byte) (string, error) {
	objectKey := fmt.Sprintf("resumes/exports/%s.pdf", exportID)

	sc.logger.Info("Uploading resume artifact to DigitalOcean Spaces", map[string]interface{}{
		"export_id":  exportID,
		"object_key": objectKey,
		"size_bytes": len(pdfData),
	})

	if err := sc.deleteExistingArtifact(exportID); err != nil {
		sc.logger.Warn("Failed to delete existing artifact, continuing with upload", map[string]interface{}{
			"export_id": exportID,
			"error":     err.Error(),
		})
	}

	_, err := sc.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(sc.bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(pdfData),
		ContentType: aws.String("application/pdf"),
		ACL:         aws.String("public-read"),
	})

	if err != nil {
		sc.logger.Error("Failed to upload resume artifact", map[string]interface{}{
			"export_id":  exportID,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("failed to upload resume artifact: %w", err)
	}

	artifactURL := sc.publicURL(objectKey)

	sc.logger.Info("Resume artifact uploaded successfully", map[string]interface{}{
		"export_id":    exportID,
		"object_key":   objectKey,
		"artifact_url": artifactURL,
	})

	return artifactURL, nil
}

// publicURL prefers the CDN endpoint, then the configured bucket URL, then a
// URL constructed from region and bucket name.
func (sc *SpacesClient) publicURL(objectKey string) string {
	if sc.cdnURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(sc.cdnURL, "/"), objectKey)
	}
	if sc.bucketURL != "" {
		bucketBaseURL := strings.TrimRight(sc.bucketURL, "/")
		if !strings.HasPrefix(bucketBaseURL, "https://") {
			bucketBaseURL = "https://" + bucketBaseURL
		}
		return fmt.Sprintf("%s/%s", bucketBaseURL, objectKey)
	}
	region := ""
	if sc.client.Config.Region != nil {
		region = *sc.client.Config.Region
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", sc.bucketName, region, objectKey)
}

// deleteExistingArtifact removes any existing export for the given ID
func (sc *SpacesClient) deleteExistingArtifact(exportID string) error {
	prefix := fmt.Sprintf("resumes/exports/%s.", exportID)

	listResult, err := sc.client.ListObjectsV2(&s3.ListObjectsV2Input{
		Bucket: aws.String(sc.bucketName),
		Prefix: aws.String(prefix),
	})

	if err != nil {
		return fmt.Errorf("failed to list existing artifacts: %w", err)
	}

	for _, obj := range listResult.Contents {
		_, err := sc.client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(sc.bucketName),
			Key:    obj.Key,
		})
		if err != nil {
			sc.logger.Warn("Failed to delete existing artifact object", map[string]interface{}{
				"export_id":  exportID,
				"object_key": *obj.Key,
				"error":      err.Error(),
			})
		}
	}

	return nil
}

// IsHealthy checks if the Spaces client can communicate with the service
func (sc *SpacesClient) IsHealthy() bool {
	_, err := sc.client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(sc.bucketName),
	})

	healthy := err == nil
	if !healthy {
		sc.logger.Error("DigitalOcean Spaces health check failed", map[string]interface{}{
			"bucket_name": sc.bucketName,
			"error":       err.Error(),
		})
	}

	return healthy
}
