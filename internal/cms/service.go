package cms

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
)

// Store is the persistence surface the service needs.
type Store interface {
	ListPublished(ctx context.Context, query ListQuery) ([]models.BlogPost, int64, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Related(ctx context.Context, post *models.BlogPost) ([]models.BlogPost, error)
	IncrementViews(ctx context.Context, slug string) error
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, post *models.BlogPost) error
}

// Service runs the public blog and its back-office editing.
type Service struct {
	store Store
	logg  *logger.Logger
}

func NewService(store Store, logg *logger.Logger) *Service {
	return &Service{store: store, logg: logg}
}

// List returns the published posts for the public site.
func (s *Service) List(ctx context.Context, query ListQuery) ([]models.BlogPost, int64, error) {
	return s.store.ListPublished(ctx, query)
}

// PostDetail is the slug page payload.
type PostDetail struct {
	Post    *models.BlogPost  `json:"post"`
	Related []models.BlogPost `json:"related"`
}

// GetBySlug returns one published post with its related reads. The view
// counter bumps on every fetch; a failed bump never fails the page.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*PostDetail, error) {
	post, err := s.store.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	related, err := s.store.Related(ctx, post)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementViews(ctx, slug); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to bump view count for "+slug)
	}
	return &PostDetail{Post: post, Related: related}, nil
}

// PostInput is the editor payload for creating or updating a post.
type PostInput struct {
	Title    string `json:"title" validate:"required"`
	Category string `json:"category"`
	Body     string `json:"body" validate:"required"`
	Publish  bool   `json:"publish"`
}

// Create inserts a post, deriving the slug from the title.
func (s *Service) Create(ctx context.Context, input PostInput) (*models.BlogPost, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and body are required")
	}
	post := &models.BlogPost{
		Slug:      Slugify(input.Title),
		Title:     strings.TrimSpace(input.Title),
		Category:  strings.TrimSpace(input.Category),
		Body:      input.Body,
		Published: input.Publish,
	}
	if post.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must contain at least one letter or digit")
	}
	if err := s.store.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update rewrites an existing post. The slug is immutable so published
// links never break.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input PostInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Body) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title and body are required")
	}
	return s.store.Update(ctx, &models.BlogPost{
		ID:        id,
		Title:     strings.TrimSpace(input.Title),
		Category:  strings.TrimSpace(input.Category),
		Body:      input.Body,
		Published: input.Publish,
	})
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a title and collapses everything that is not a
// letter or digit into single hyphens.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
