package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bilgisen/newsinflight/internal/config"
	"github.com/bilgisen/newsinflight/internal/models"
)

// maxDocumentSize bounds the fixture document read from the bucket.
const maxDocumentSize = 16 << 20

// ObjectGetter is the part of the S3 client LoadFromS3 needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Document is the JSON layout of a fixture object.
type Document struct {
	Articles []models.NewsArticle `json:"articles"`
}

// NewS3Client creates a client for the CloudFlare R2 bucket in cfg.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.R2Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// LoadFromS3 reads and decodes a fixture document. Articles without an id are
// rejected so a truncated upload fails loudly instead of serving blanks.
func LoadFromS3(ctx context.Context, client ObjectGetter, bucket, key string) ([]models.NewsArticle, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get fixture object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	return Decode(io.LimitReader(out.Body, maxDocumentSize))
}

// Decode parses a fixture document.
func Decode(r io.Reader) ([]models.NewsArticle, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode fixture document: %w", err)
	}
	for i, a := range doc.Articles {
		if a.ID == "" {
			return nil, fmt.Errorf("fixture article %d has no id", i)
		}
		doc.Articles[i].PublishedAt = a.PublishedAt.UTC()
	}
	return doc.Articles, nil
}
