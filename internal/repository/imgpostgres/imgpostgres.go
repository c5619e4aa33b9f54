package imgpostgres

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/QuietRecursion/ImageTagger/internal/model"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

// imageColumns aggregates the tag names of each matched image row;
// every query below must GROUP BY i.id for the aggregate to work
const imageColumns = `i.id, i.url, i.label, i.created_at,
	COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.name IS NOT NULL), '{}')`

const imageJoins = `FROM images i
	LEFT JOIN image_tags it ON it.image_id = i.id
	LEFT JOIN tags t ON t.id = it.tag_id`

// Create inserts the image, upserts its tags by name and links them in a
// single transaction, so a failed creation persists nothing
func (p PostgresRepo) Create(ctx context.Context, n *model.Image) error {
	tx, err := p.DB.Master.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Failed to rollback image-create transaction: %v", err)
		}
	}()

	imageQuery := `INSERT INTO images (id, url, label, created_at)
	VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, imageQuery, n.ID, n.URL, n.Label, n.CreatedAt); err != nil {
		return err
	}

	tagQuery := `INSERT INTO tags (name) VALUES ($1)
	ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
	RETURNING id`
	linkQuery := `INSERT INTO image_tags (image_id, tag_id)
	VALUES ($1, $2)
	ON CONFLICT DO NOTHING`

	for _, tag := range n.Tags {
		var tagID int64
		if err := tx.QueryRowContext(ctx, tagQuery, tag).Scan(&tagID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, linkQuery, n.ID, tagID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (p PostgresRepo) Get(ctx context.Context, id string) (*model.Image, error) {
	query := `SELECT ` + imageColumns + `
	` + imageJoins + `
	WHERE i.id = $1
	GROUP BY i.id`

	var image model.Image
	var tags pq.StringArray

	err := p.DB.QueryRowContext(ctx, query, id).Scan(&image.ID,
		&image.URL,
		&image.Label,
		&image.CreatedAt,
		&tags)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrImageNotFound
		default:
			return nil, err // 500
		}
	}

	image.Tags = []string(tags)
	return &image, nil
}

func (p PostgresRepo) List(ctx context.Context) ([]model.Image, error) {
	query := `SELECT ` + imageColumns + `
	` + imageJoins + `
	GROUP BY i.id
	ORDER BY i.created_at`

	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanImages(rows)
}

func (p PostgresRepo) ListByTags(ctx context.Context, tags []string, mode model.MatchMode) ([]model.Image, error) {
	var having string
	args := []any{pq.Array(tags)}

	switch mode {
	case model.MatchAll:
		having = `HAVING COUNT(DISTINCT t.name) FILTER (WHERE t.name = ANY($1)) = $2`
		args = append(args, len(tags))
	case model.MatchAny:
		having = `HAVING COUNT(t.name) FILTER (WHERE t.name = ANY($1)) > 0`
	default:
		return nil, model.ErrFilterConflict
	}

	query := `SELECT ` + imageColumns + `
	` + imageJoins + `
	GROUP BY i.id
	` + having + `
	ORDER BY i.created_at`

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanImages(rows)
}

func scanImages(rows *sql.Rows) ([]model.Image, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	images := make([]model.Image, 0)
	for rows.Next() {
		var image model.Image
		var tags pq.StringArray
		if err := rows.Scan(&image.ID,
			&image.URL,
			&image.Label,
			&image.CreatedAt,
			&tags); err != nil {
			return nil, err
		}
		image.Tags = []string(tags)
		images = append(images, image)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return images, nil
}
