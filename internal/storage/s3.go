package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/program"
	"github.com/claude/liftlog/internal/sheet"
)

// Object names inside the configured prefix.
const (
	historyObject = "history.csv"
	programObject = "program.json"
)

// S3 keeps the history as one CSV object and the program as one JSON
// object. Each save replaces the object wholesale.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 builds an S3 store. Static credentials are used when both keys are
// set, otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3WithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3WithClient(client *s3.Client, bucket, prefix string) *S3 {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) key(name string) string { return s.prefix + name }

// get returns the object body, or nil when the object does not exist yet.
func (s *S3) get(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: aws.String(s.key(name))})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting %s: %w", name, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (s *S3) put(ctx context.Context, name, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", name, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re interface{ HTTPStatusCode() int }
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

func (s *S3) LoadHistory(ctx context.Context) ([]models.WorkoutSet, error) {
	data, err := s.get(ctx, historyObject)
	if err != nil {
		return nil, wrap("load history", err)
	}
	sets, err := sheet.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, wrap("load history", err)
	}
	return sets, nil
}

func (s *S3) SaveHistory(ctx context.Context, sets []models.WorkoutSet) error {
	var buf bytes.Buffer
	if err := sheet.WriteCSV(&buf, sets); err != nil {
		return wrap("save history", err)
	}
	return wrap("save history", s.put(ctx, historyObject, "text/csv", buf.Bytes()))
}

func (s *S3) LoadProgram(ctx context.Context) (models.Program, error) {
	data, err := s.get(ctx, programObject)
	if err != nil {
		return models.Program{}, wrap("load program", err)
	}
	// A malformed blob is not a store failure: the readable part comes back
	// with an error wrapping program.ErrMalformed.
	return program.Decode(data)
}

func (s *S3) SaveProgram(ctx context.Context, p models.Program) error {
	data, err := program.Encode(p)
	if err != nil {
		return wrap("save program", err)
	}
	return wrap("save program", s.put(ctx, programObject, "application/json", data))
}

func (s *S3) Close() error { return nil }
