package cms

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

type stubStore struct {
	posts   map[string]*models.BlogPost
	views   map[string]int
	created []*models.BlogPost
}

func newStubStore() *stubStore {
	return &stubStore{posts: map[string]*models.BlogPost{}, views: map[string]int{}}
}

func (s *stubStore) ListPublished(ctx context.Context, query ListQuery) ([]models.BlogPost, int64, error) {
	var out []models.BlogPost
	for _, post := range s.posts {
		if query.Category != "" && post.Category != query.Category {
			continue
		}
		out = append(out, *post)
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) GetPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	if post, ok := s.posts[slug]; ok {
		return post, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
}

func (s *stubStore) Related(ctx context.Context, post *models.BlogPost) ([]models.BlogPost, error) {
	var out []models.BlogPost
	for _, other := range s.posts {
		if other.ID != post.ID && other.Category == post.Category {
			out = append(out, *other)
		}
	}
	return out, nil
}

func (s *stubStore) IncrementViews(ctx context.Context, slug string) error {
	s.views[slug]++
	return nil
}

func (s *stubStore) Create(ctx context.Context, post *models.BlogPost) error {
	if _, ok := s.posts[post.Slug]; ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "a post with this slug already exists")
	}
	post.ID = uuid.New()
	s.posts[post.Slug] = post
	s.created = append(s.created, post)
	return nil
}

func (s *stubStore) Update(ctx context.Context, post *models.BlogPost) error {
	for _, existing := range s.posts {
		if existing.ID == post.ID {
			existing.Title = post.Title
			existing.Body = post.Body
			existing.Category = post.Category
			existing.Published = post.Published
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Toughened vs Annealed Glass", "toughened-vs-annealed-glass"},
		{"  5 Tips for Shower Enclosures!  ", "5-tips-for-shower-enclosures"},
		{"GST & HSN: a primer", "gst-hsn-a-primer"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.title); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestCreateDerivesSlugAndRejectsBlank(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, nil)

	post, err := svc.Create(context.Background(), PostInput{
		Title: "Caring for Toughened Glass", Category: "care", Body: "<p>...</p>", Publish: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.Slug != "caring-for-toughened-glass" {
		t.Fatalf("unexpected slug: %s", post.Slug)
	}

	if _, err := svc.Create(context.Background(), PostInput{Title: " ", Body: "x"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Create(context.Background(), PostInput{Title: "!!!", Body: "x"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty slug, got %v", err)
	}
}

func TestGetBySlugBumpsViewsAndFindsRelated(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, nil)

	first, _ := svc.Create(context.Background(), PostInput{Title: "Post One", Category: "care", Body: "a", Publish: true})
	svc.Create(context.Background(), PostInput{Title: "Post Two", Category: "care", Body: "b", Publish: true})
	svc.Create(context.Background(), PostInput{Title: "Post Three", Category: "news", Body: "c", Publish: true})

	detail, err := svc.GetBySlug(context.Background(), first.Slug)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if len(detail.Related) != 1 || detail.Related[0].Slug != "post-two" {
		t.Fatalf("unexpected related posts: %+v", detail.Related)
	}
	if store.views[first.Slug] != 1 {
		t.Fatalf("expected one view bump, got %d", store.views[first.Slug])
	}

	if _, err := svc.GetBySlug(context.Background(), "missing"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
