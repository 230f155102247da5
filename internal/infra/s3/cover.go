package infra_s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/moviematch/core/internal/config"
	"github.com/moviematch/core/internal/model"
)

// MustEstablishConn builds the object storage client. A configured
// endpoint selects an S3-compatible service with static credentials;
// otherwise the default AWS chain applies.
func MustEstablishConn(cfg config.S3) *s3.Client {
	if cfg.Endpoint == "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			log.Fatal(err)
		}
		return s3.NewFromConfig(awsCfg)
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               cfg.Endpoint,
			SigningRegion:     cfg.Region,
			HostnameImmutable: true,
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		log.Fatal(err)
	}
	return s3.NewFromConfig(awsCfg)
}

// CoverStorage keeps session cover images derived from matched movie
// posters in an object bucket.
type CoverStorage struct {
	client *s3.Client
	http   *http.Client

	prefix     string
	bucketName string
}

func New(bucketName string, client *s3.Client, prefix string) (*CoverStorage, error) {
	storage := CoverStorage{
		bucketName: bucketName,
		client:     client,
		prefix:     prefix,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	_, err := storage.client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) {
			switch apiError.(type) {
			case *types.NotFound:
				log.Printf("Bucket %v is available.\n", bucketName)
				err = nil
			default:
				log.Printf("Either you don't have access to bucket %v or another error occurred. "+
					"Here's what happened: %v\n", bucketName, err)
			}
		}
	}

	return &storage, err
}

// Store downloads the poster and uploads it as the session cover,
// returning the stored object key as the cover link.
func (s *CoverStorage) Store(ctx context.Context, id model.SessionID, posterLink string) (string, error) {
	content, err := s.download(ctx, posterLink)
	if err != nil {
		return "", err
	}

	key := s.buildKey(s.prefix, string(id)+path.Ext(posterLink))
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucketName,
		Key:    &key,
		Body:   bytes.NewReader(content),
		ACL:    types.ObjectCannedACLPrivate,
	}); err != nil {
		return "", fmt.Errorf("failed to save cover to S3: %w", err)
	}
	return key, nil
}

// coverLinkTTL bounds how long a served cover URL stays valid. Covers
// are re-resolved on every session read, so a short window is enough.
const coverLinkTTL = 12 * time.Hour

// ResolveLink serves a stored cover key as a short-lived presigned URL.
func (s *CoverStorage) ResolveLink(ctx context.Context, key string) (string, error) {
	return s.PresignedURL(ctx, key, coverLinkTTL)
}

// PresignedURL exposes a stored cover for direct client download.
func (s *CoverStorage) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *CoverStorage) download(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch poster: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (s *CoverStorage) buildKey(paths ...string) string {
	var cleaned []string
	for _, p := range paths {
		clean := strings.ReplaceAll(p, "\\", "")
		clean = strings.ReplaceAll(clean, "/", "")
		cleaned = append(cleaned, clean)
	}
	return path.Join(cleaned...)
}
