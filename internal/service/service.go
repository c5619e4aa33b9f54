// Package service provides business-logic for the app
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/QuietRecursion/ImageTagger/internal/model"
	"github.com/QuietRecursion/ImageTagger/internal/mwlogger"
	"github.com/QuietRecursion/ImageTagger/internal/repository"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

type ImageService struct {
	repo      repository.ImageRepo
	detector  TagDetector
	storage   BlobStorage
	publisher EventPublisher
}

// NewImageService wires the ingestion/query logic; publisher may be nil when
// eventing is not configured
func NewImageService(imageRep repository.ImageRepo, det TagDetector, strg BlobStorage, pub EventPublisher) *ImageService {
	return &ImageService{
		repo:      imageRep,
		detector:  det,
		storage:   strg,
		publisher: pub,
	}
}

// TagDetector - контракт для работы с провайдером распознавания
type TagDetector interface {
	DetectTags(ctx context.Context, src model.ImageSource) ([]string, error)
}

// BlobStorage - контракт для работы с хранилищем
type BlobStorage interface {
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	ObjectURL(key string) string
}

// EventPublisher - контракт для работы с очередью событий
type EventPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

func (c ImageService) Create(ctx context.Context, req *model.ImageCreateRequest) (*model.Image, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	// Валидируем источник: ровно один из image_url/image_base64
	src, err := resolveImageSource(req)
	if err != nil {
		return nil, err
	}

	newImage := &model.Image{
		ID:   uuid.New(),
		Tags: []string{},
	}

	// спрашиваем у провайдера теги - если запросили детекцию;
	// ошибка провайдера прерывает запрос, в базу ничего не попадает
	if req.ObjectDetection {
		tags, err := c.detector.DetectTags(ctx, src)
		if err != nil {
			logger.Error().Err(err).Msg("Object detection provider call failed")
			return nil, model.ErrRecognitionFailed
		}
		newImage.Tags = dedupeTags(tags)
	}

	// кладем в хранилище декодированный base64-пейлоад, либо записываем
	// пользовательский URL как есть
	if src.Base64 != "" {
		storedURL, err := c.uploadBase64(ctx, newImage.ID, src.Base64)
		if err != nil {
			return nil, err
		}
		newImage.URL = storedURL
	} else {
		newImage.URL = src.URL
	}

	// явный label всегда важнее сгенерированного
	newImage.Label = resolveLabel(req.Label, newImage.Tags)
	now := time.Now().UTC()
	newImage.CreatedAt = &now

	// шлем в базу
	if err := c.repo.Create(ctx, newImage); err != nil {
		logger.Error().Err(err).Msg("Failed to create image in DB")
		return nil, model.ErrCommon500
	}

	c.publishCreated(ctx, newImage)
	return newImage, nil
}

func (c ImageService) Get(ctx context.Context, id string) (*model.Image, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageNotFound):
			return nil, model.ErrImageNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch image %q from DB", id))
			return nil, model.ErrCommon500
		}
	}

	return res, nil
}

func (c ImageService) List(ctx context.Context, q *model.ListQuery) ([]model.Image, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	tags, mode, err := resolveTagFilter(q)
	if err != nil {
		return nil, err
	}

	var res []model.Image
	if mode == "" {
		res, err = c.repo.List(ctx)
	} else {
		res, err = c.repo.ListByTags(ctx, tags, mode)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch images list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

// uploadBase64 decodes the payload, proves it is a real image and stores it
// re-encoded as PNG under the image id
func (c ImageService) uploadBase64(ctx context.Context, id uuid.UUID, payload string) (string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	raw, err := decodeBase64Payload(payload)
	if err != nil {
		return "", model.ErrBadBase64
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", model.ErrBadImagePayload
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		logger.Error().Err(err).Msg("Failed to re-encode uploaded image to PNG")
		return "", model.ErrCommon500
	}

	key := id.String() + ".png"
	if err := c.storage.Put(ctx, key, int64(buf.Len()), "image/png", &buf); err != nil {
		logger.Error().Err(err).Msg("Failed to save uploaded image in Storage")
		return "", model.ErrCommon500
	}

	return c.storage.ObjectURL(key), nil
}

// publishCreated emits the image.created event; the stream is observational,
// so a publish failure never fails the request
func (c ImageService) publishCreated(ctx context.Context, img *model.Image) {
	if c.publisher == nil {
		return
	}
	logger := mwlogger.LoggerFromContext(ctx)

	payload, err := json.Marshal(img)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal image-created event")
		return
	}

	if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(img.ID.String()), payload); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish image-created event for %q", img.ID))
	}
}
