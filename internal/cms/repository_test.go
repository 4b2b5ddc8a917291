package cms

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

func setupCMSTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	schema := `
CREATE TABLE blog_posts (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  category TEXT,
  body TEXT NOT NULL,
  published INTEGER NOT NULL DEFAULT 0,
  view_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedPost(t *testing.T, db *gorm.DB, slug, category string, published bool, age time.Duration) models.BlogPost {
	t.Helper()

	post := models.BlogPost{
		ID:        uuid.New(),
		Slug:      slug,
		Title:     "Post " + slug,
		Category:  category,
		Body:      "body",
		Published: published,
		CreatedAt: time.Now().Add(-age),
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func TestListPublishedFiltersAndOrders(t *testing.T) {
	db := setupCMSTestDB(t)
	repo := NewRepository(db)

	seedPost(t, db, "old-guide", "guides", true, 48*time.Hour)
	newest := seedPost(t, db, "new-guide", "guides", true, time.Hour)
	seedPost(t, db, "draft-guide", "guides", false, time.Minute)
	seedPost(t, db, "news-item", "news", true, 2*time.Hour)

	posts, total, err := repo.ListPublished(context.Background(), ListQuery{
		Params:   pagination.Params{Page: 1, Limit: 10},
		Category: "guides",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, posts, 2)
	assert.Equal(t, newest.Slug, posts[0].Slug)

	posts, total, err = repo.ListPublished(context.Background(), ListQuery{
		Params: pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, posts, 3)
}

func TestGetPublishedBySlug(t *testing.T) {
	db := setupCMSTestDB(t)
	repo := NewRepository(db)

	seedPost(t, db, "visible", "guides", true, time.Hour)
	seedPost(t, db, "hidden", "guides", false, time.Hour)

	post, err := repo.GetPublishedBySlug(context.Background(), "visible")
	require.NoError(t, err)
	assert.Equal(t, "Post visible", post.Title)

	_, err = repo.GetPublishedBySlug(context.Background(), "hidden")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = repo.GetPublishedBySlug(context.Background(), "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRelatedExcludesSelf(t *testing.T) {
	db := setupCMSTestDB(t)
	repo := NewRepository(db)

	subject := seedPost(t, db, "subject", "guides", true, time.Hour)
	seedPost(t, db, "sibling-one", "guides", true, 2*time.Hour)
	seedPost(t, db, "sibling-two", "guides", true, 3*time.Hour)
	seedPost(t, db, "other-category", "news", true, time.Hour)

	related, err := repo.Related(context.Background(), &subject)
	require.NoError(t, err)
	require.Len(t, related, 2)
	for _, post := range related {
		assert.NotEqual(t, subject.ID, post.ID)
		assert.Equal(t, "guides", post.Category)
	}
}

func TestIncrementViews(t *testing.T) {
	db := setupCMSTestDB(t)
	repo := NewRepository(db)

	seedPost(t, db, "counted", "guides", true, time.Hour)

	require.NoError(t, repo.IncrementViews(context.Background(), "counted"))
	require.NoError(t, repo.IncrementViews(context.Background(), "counted"))

	post, err := repo.GetPublishedBySlug(context.Background(), "counted")
	require.NoError(t, err)
	assert.EqualValues(t, 2, post.ViewCount)
}

func TestCreateDuplicateSlugConflicts(t *testing.T) {
	db := setupCMSTestDB(t)
	repo := NewRepository(db)

	first := models.BlogPost{ID: uuid.New(), Slug: "taken", Title: "First", Body: "body", Published: true}
	require.NoError(t, repo.Create(context.Background(), &first))

	dup := models.BlogPost{ID: uuid.New(), Slug: "taken", Title: "Second", Body: "body"}
	err := repo.Create(context.Background(), &dup)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestUpdateMissingPost(t *testing.T) {
	db := setupCMSTestDB(t)
	repo := NewRepository(db)

	ghost := models.BlogPost{ID: uuid.New(), Title: "Ghost", Body: "body"}
	err := repo.Update(context.Background(), &ghost)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
