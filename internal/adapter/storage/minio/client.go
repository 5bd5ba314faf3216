package minio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	appconfig "github.com/GoArmGo/PhotoShare/internal/config"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
)

// Client — медиа-хостинг изображений поверх S3-совместимого хранилища (MinIO)
type Client struct {
	s3Client      *s3.Client
	uploader      *manager.Uploader
	bucketName    string
	appName       string
	publicBaseURL string
	logger        *slog.Logger
}

var _ ports.MediaHost = (*Client)(nil)

// NewMinioClient создает клиент и при необходимости создает бакет
func NewMinioClient(cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	if cfg.MinioAccessKeyID == "" || cfg.MinioSecretAccessKey == "" || cfg.MinioBucketName == "" || cfg.MinioEndpoint == "" || cfg.MinioRegion == "" {
		return nil, fmt.Errorf("MinIO credentials (MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, MINIO_BUCKET_NAME, MINIO_ENDPOINT, MINIO_REGION) must be set in environment variables")
	}

	scheme := "http"
	if cfg.MinioUseSSL {
		scheme = "https"
	}
	endpointURL := fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)

	cfgAws, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.MinioRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.MinioAccessKeyID, cfg.MinioSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for MinIO: %w", err)
	}

	s3Client := s3.NewFromConfig(cfgAws, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL)
		o.UsePathStyle = true
	})

	publicBaseURL := cfg.MinioPublicURL
	if publicBaseURL == "" {
		publicBaseURL = endpointURL
	}

	c := &Client{
		s3Client:      s3Client,
		uploader:      manager.NewUploader(s3Client),
		bucketName:    cfg.MinioBucketName,
		appName:       cfg.AppName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}

	if err := c.ensureBucket(cfg.MinioRegion); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(region string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	})
	if err == nil {
		c.logger.Info("bucket already exists", "bucket", c.bucketName)
		return nil
	}

	c.logger.Info("bucket not found, creating", "bucket", c.bucketName)

	_, err = c.s3Client.CreateBucket(context.TODO(), &s3.CreateBucketInput{
		Bucket: aws.String(c.bucketName),
		CreateBucketConfiguration: &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket '%s': %w", c.bucketName, err)
	}

	waiter := s3.NewBucketExistsWaiter(c.s3Client)
	if err := waiter.Wait(context.TODO(), &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	}, 30*time.Second); err != nil {
		return fmt.Errorf("failed waiting for bucket '%s' to be created: %w", c.bucketName, err)
	}

	c.logger.Info("bucket created", "bucket", c.bucketName)
	return nil
}

// ObjectKey собирает ключ объекта вида <app>/<owner>/<id>-<file>.
// Идентификатор разводит повторные загрузки файла с тем же именем.
func ObjectKey(appName, ownerName string, objectID uuid.UUID, fileName string) string {
	return path.Join(appName, ownerName, objectID.String()+"-"+path.Base(fileName))
}

// Upload загружает файл и возвращает его публичный URL и ключ объекта
func (c *Client) Upload(ctx context.Context, file io.Reader, ownerName, fileName, contentType string) (ports.MediaObject, error) {
	start := time.Now()
	key := ObjectKey(c.appName, ownerName, uuid.New(), fileName)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		c.logger.Error("failed to upload object", "key", key, "error", err)
		return ports.MediaObject{}, fmt.Errorf("failed to upload file %s to bucket %s: %w", key, c.bucketName, err)
	}

	c.logger.Info("object uploaded",
		"key", key,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ports.MediaObject{URL: c.objectURL(key), PublicID: key}, nil
}

func (c *Client) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucketName, key)
}

// DeleteByPublicID удаляет объект по ключу
func (c *Client) DeleteByPublicID(ctx context.Context, publicID string) error {
	start := time.Now()
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s from bucket %s: %w", publicID, c.bucketName, err)
	}
	c.logger.Info("object deleted", "key", publicID, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
