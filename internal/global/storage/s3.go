package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	appconfig "project-checkin-system/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Backend 将文件镜像到 S3 兼容对象存储
type s3Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

func newS3Backend() *s3Backend {
	cfg := appconfig.Get().S3

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &s3Backend{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}
}

func (b *s3Backend) key(name string) string {
	return strings.TrimLeft(path.Join(b.prefix, name), "/")
}

func (b *s3Backend) put(name string, body io.Reader) error {
	if b.bucket == "" {
		return fmt.Errorf("S3 bucket 未配置")
	}
	uploader := manager.NewUploader(b.client)
	_, err := uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
		Body:   body,
	})
	return err
}

func (b *s3Backend) remove(name string) error {
	_, err := b.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
	})
	return err
}

// presignDownload 生成预签名下载 URL，用于访问私有对象
func (b *s3Backend) presignDownload(name string, expiresIn int64) (string, error) {
	if expiresIn <= 0 {
		expiresIn = 3600 // 默认 1 小时
	}

	presignClient := s3.NewPresignClient(b.client)
	presignedReq, err := presignClient.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Duration(expiresIn) * time.Second
	})
	if err != nil {
		return "", fmt.Errorf("生成预签名下载 URL 失败: %w", err)
	}

	return presignedReq.URL, nil
}
