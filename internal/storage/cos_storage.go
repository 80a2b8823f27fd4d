package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"stopbonus/internal/clock"
	"stopbonus/internal/config"

	"github.com/tencentyun/cos-go-sdk-v5"
)

type cosStorage struct {
	client *cos.Client
	prefix string
	keys   keyBuilder
}

// NewCOSStorage 创建腾讯云 COS 备份存储。
func NewCOSStorage(cfg config.Config, clk clock.Clock) (Storage, error) {
	baseURL := strings.TrimSpace(cfg.StorageCOSBucketURL)
	if baseURL == "" {
		return nil, errors.New("storage: missing COS bucket URL")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse COS bucket URL: %w", err)
	}

	secretID := strings.TrimSpace(cfg.StorageCOSSecretID)
	secretKey := strings.TrimSpace(cfg.StorageCOSSecretKey)
	if secretID == "" || secretKey == "" {
		return nil, errors.New("storage: missing COS credentials")
	}

	transport := &cos.AuthorizationTransport{
		SecretID:  secretID,
		SecretKey: secretKey,
	}

	return &cosStorage{
		client: cos.NewClient(&cos.BaseURL{BucketURL: parsedURL}, &http.Client{Transport: transport}),
		prefix: trimPrefix(cfg.StorageCOSPrefix),
		keys:   newKeyBuilder(clk),
	}, nil
}

func (s *cosStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (string, error) {
	if err := checkSave(ctx, data); err != nil {
		return "", err
	}

	key := joinPrefix(s.prefix, s.keys.build(opts))

	resp, err := s.client.Object.Head(ctx, key, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err == nil {
		return "", fmt.Errorf("%w: %s", ErrObjectExists, key)
	}
	if !cos.IsNotFoundError(err) {
		return "", fmt.Errorf("head object: %w", err)
	}

	options := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: detectContentType(opts.Extension),
		},
	}
	resp, err = s.client.Object.Put(ctx, key, bytes.NewReader(data), options)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return key, nil
}

var _ Storage = (*cosStorage)(nil)
