// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/ClusterCockpit/pdg-backend/pkg/log"
)

type S3StoreConfig struct {
	Kind         string `json:"kind"`
	Endpoint     string `json:"endpoint"`
	Bucket       string `json:"bucket"`
	AccessKey    string `json:"access-key"`
	SecretKey    string `json:"secret-key"`
	Region       string `json:"region"`
	UsePathStyle bool   `json:"use-path-style"`
}

// S3Store talks to any S3-compatible object store (AWS, GCS interop,
// MinIO).
type S3Store struct {
	client *s3.Client
	bucket string
}

func (sa *S3Store) Init(rawConfig json.RawMessage) error {
	var cfg S3StoreConfig
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		log.Warnf("Init() > Unmarshal error: %#v", err)
		return err
	}

	if cfg.Bucket == "" {
		return fmt.Errorf("Init() : empty bucket name")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return fmt.Errorf("Init() : load AWS config: %w", err)
	}

	opts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}

	sa.client = s3.NewFromConfig(awsCfg, opts)
	sa.bucket = cfg.Bucket
	return nil
}

func (sa *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := sa.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(sa.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

func (sa *S3Store) GetRange(ctx context.Context, key string, start, end int64) ([]byte, error) {
	result, err := sa.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(sa.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
			return nil, fmt.Errorf("%w: %s [%d, %d]", ErrRangeNotSatisfiable, key, start, end)
		}
		return nil, fmt.Errorf("get object range %q: %w", key, err)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

func (sa *S3Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := sa.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(sa.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (sa *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := sa.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(sa.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object %q: %w", key, err)
	}
	return true, nil
}

func (sa *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(sa.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(sa.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}
