package main

import (
	"context"

	"github.com/QuietRecursion/ImageTagger/internal/model"
)

type ImageAPIService interface {
	Create(ctx context.Context, req *model.ImageCreateRequest) (*model.Image, error)
	Get(ctx context.Context, id string) (*model.Image, error)
	List(ctx context.Context, q *model.ListQuery) ([]model.Image, error)
}
