package cms

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

const relatedLimit = 3

// Repository persists blog posts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListQuery filters the public post listing.
type ListQuery struct {
	pagination.Params
	Category string
}

// ListPublished returns published posts, newest first.
func (r *Repository) ListPublished(ctx context.Context, query ListQuery) ([]models.BlogPost, int64, error) {
	params := pagination.Normalize(query.Params)

	base := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("published")
	if query.Category != "" {
		base = base.Where("category = ?", query.Category)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count posts")
	}

	var posts []models.BlogPost
	err := base.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}
	return posts, total, nil
}

// GetPublishedBySlug returns one published post.
func (r *Repository) GetPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).
		Where("slug = ? AND published", slug).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get post")
	}
	return &post, nil
}

// Related returns up to three other published posts in the same category.
func (r *Repository) Related(ctx context.Context, post *models.BlogPost) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := r.db.WithContext(ctx).
		Where("published AND category = ? AND id <> ?", post.Category, post.ID).
		Order("created_at DESC").
		Limit(relatedLimit).
		Find(&posts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "related posts")
	}
	return posts, nil
}

// IncrementViews bumps the view counter atomically in the database.
func (r *Repository) IncrementViews(ctx context.Context, slug string) error {
	err := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("slug = ?", slug).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment views")
	}
	return nil
}

// Create inserts a post. Slug collisions surface as conflicts.
func (r *Repository) Create(ctx context.Context, post *models.BlogPost) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return pkgerrors.New(pkgerrors.CodeConflict, "a post with this slug already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}
	return nil
}

// Update rewrites the editable columns of a post.
func (r *Repository) Update(ctx context.Context, post *models.BlogPost) error {
	result := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":     post.Title,
			"category":  post.Category,
			"body":      post.Body,
			"published": post.Published,
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update post")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	return nil
}
