package service

import (
	"context"
	"io"

	"github.com/QuietRecursion/ImageTagger/internal/model"
	"github.com/wb-go/wbf/retry"
)

// MOCK REPOSITORY

type mockRepo struct {
	createFn     func(ctx context.Context, img *model.Image) error
	getFn        func(ctx context.Context, id string) (*model.Image, error)
	listFn       func(ctx context.Context) ([]model.Image, error)
	listByTagsFn func(ctx context.Context, tags []string, mode model.MatchMode) ([]model.Image, error)
}

func (m *mockRepo) Create(ctx context.Context, img *model.Image) error {
	return m.createFn(ctx, img)
}

func (m *mockRepo) Get(ctx context.Context, id string) (*model.Image, error) {
	return m.getFn(ctx, id)
}

func (m *mockRepo) List(ctx context.Context) ([]model.Image, error) {
	return m.listFn(ctx)
}

func (m *mockRepo) ListByTags(ctx context.Context, tags []string, mode model.MatchMode) ([]model.Image, error) {
	return m.listByTagsFn(ctx, tags, mode)
}

// MOCK STORAGE

type mockStorage struct {
	putFn func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	base  string
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) ObjectURL(key string) string {
	return m.base + "/" + key
}

// MOCK DETECTOR

type mockDetector struct {
	detectFn func(ctx context.Context, src model.ImageSource) ([]string, error)
}

func (m *mockDetector) DetectTags(ctx context.Context, src model.ImageSource) ([]string, error) {
	return m.detectFn(ctx, src)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}
