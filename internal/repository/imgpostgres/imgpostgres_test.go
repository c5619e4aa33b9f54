package imgpostgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/QuietRecursion/ImageTagger/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

func newRepoWithMock(t *testing.T) (PostgresRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	pg := &dbpg.DB{Master: db}

	repo := PostgresRepo{DB: pg}

	return repo, mock
}

// CREATE - SUCCESS - IMAGE, TAG UPSERTS AND LINKS IN ONE TX
func TestPostgresRepo_Create_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	ctime := time.Now()
	img := &model.Image{
		ID:        uuid.New(),
		URL:       "https://example.com/dog.jpg",
		Label:     "An image containing dog, cat.",
		Tags:      []string{"dog", "cat"},
		CreatedAt: &ctime,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO images`).
		WithArgs(img.ID, img.URL, img.Label, img.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`INSERT INTO tags`).
		WithArgs("dog").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`INSERT INTO image_tags`).
		WithArgs(img.ID, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`INSERT INTO tags`).
		WithArgs("cat").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec(`INSERT INTO image_tags`).
		WithArgs(img.ID, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	err := repo.Create(context.Background(), img)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// CREATE - TAG UPSERT FAIL ROLLS THE WHOLE INSERT BACK
func TestPostgresRepo_Create_TagFailRollsBack(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	ctime := time.Now()
	img := &model.Image{
		ID:        uuid.New(),
		URL:       "https://example.com/dog.jpg",
		Label:     "An image containing dog.",
		Tags:      []string{"dog"},
		CreatedAt: &ctime,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO images`).
		WithArgs(img.ID, img.URL, img.Label, img.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO tags`).
		WithArgs("dog").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), img)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// GET - SUCCESS
func TestPostgresRepo_Get_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New().String()

	rows := sqlmock.NewRows([]string{"id", "url", "label", "created_at", "tags"}).
		AddRow(id, "https://example.com/dog.jpg", "A dog", time.Now(), "{cat,dog}")

	mock.ExpectQuery(`SELECT i.id`).
		WithArgs(id).
		WillReturnRows(rows)

	img, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, img.ID.String())
	require.Equal(t, []string{"cat", "dog"}, img.Tags)
}

// GET - NOT FOUND
func TestPostgresRepo_Get_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT i.id`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, model.ErrImageNotFound)
}

// LIST - SUCCESS - TAGS AGGREGATED, UNTAGGED IMAGE YIELDS EMPTY SET
func TestPostgresRepo_List_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "url", "label", "created_at", "tags"}).
		AddRow(uuid.New().String(), "https://example.com/a.jpg", "A", time.Now(), "{dog,tree}").
		AddRow(uuid.New().String(), "https://example.com/b.jpg", "B", time.Now(), "{}")

	mock.ExpectQuery(`SELECT i.id`).
		WillReturnRows(rows)

	images, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Equal(t, []string{"dog", "tree"}, images[0].Tags)
	require.Empty(t, images[1].Tags)
}

// LIST - EMPTY STORE YIELDS EMPTY SLICE, NOT NIL
func TestPostgresRepo_List_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT i.id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "label", "created_at", "tags"}))

	images, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, images)
	require.Empty(t, images)
}

// LISTBYTAGS - ALL-OF BINDS TAG ARRAY AND COUNT
func TestPostgresRepo_ListByTags_All(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	tags := []string{"dog", "cat"}
	rows := sqlmock.NewRows([]string{"id", "url", "label", "created_at", "tags"}).
		AddRow(uuid.New().String(), "https://example.com/a.jpg", "A", time.Now(), "{cat,dog,tree}")

	mock.ExpectQuery(`SELECT i.id`).
		WithArgs(pq.Array(tags), 2).
		WillReturnRows(rows)

	images, err := repo.ListByTags(context.Background(), tags, model.MatchAll)
	require.NoError(t, err)
	require.Len(t, images, 1)
}

// LISTBYTAGS - ANY-OF BINDS ONLY THE TAG ARRAY
func TestPostgresRepo_ListByTags_Any(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	tags := []string{"dog", "tree"}

	mock.ExpectQuery(`SELECT i.id`).
		WithArgs(pq.Array(tags)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "label", "created_at", "tags"}))

	images, err := repo.ListByTags(context.Background(), tags, model.MatchAny)
	require.NoError(t, err)
	require.Empty(t, images)
}
