package transport

import (
	"context"

	"github.com/QuietRecursion/ImageTagger/internal/model"
	"github.com/gin-gonic/gin"
)

type mockImageService struct {
	createFn func(ctx context.Context, req *model.ImageCreateRequest) (*model.Image, error)
	getFn    func(ctx context.Context, id string) (*model.Image, error)
	listFn   func(ctx context.Context, q *model.ListQuery) ([]model.Image, error)
}

func (m *mockImageService) Create(ctx context.Context, req *model.ImageCreateRequest) (*model.Image, error) {
	return m.createFn(ctx, req)
}

func (m *mockImageService) Get(ctx context.Context, id string) (*model.Image, error) {
	return m.getFn(ctx, id)
}

func (m *mockImageService) List(ctx context.Context, q *model.ListQuery) ([]model.Image, error) {
	return m.listFn(ctx, q)
}

func init() {
	gin.SetMode(gin.TestMode)
}
