package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgauth "github.com/shreeglass/erp-backend/pkg/auth"
	"github.com/shreeglass/erp-backend/pkg/config"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

type stubStore struct {
	users map[string]*models.User
}

func newStubStore() *stubStore {
	return &stubStore{users: map[string]*models.User{}}
}

func (s *stubStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (s *stubStore) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (s *stubStore) Create(ctx context.Context, user *models.User) error {
	if _, ok := s.users[user.Email]; ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "a user with this email already exists")
	}
	user.ID = uuid.New()
	copied := *user
	s.users[user.Email] = &copied
	return nil
}

func (s *stubStore) UpdateOptIns(ctx context.Context, id uuid.UUID, emailOptIn, whatsappOptIn bool) error {
	for _, user := range s.users {
		if user.ID == id {
			user.EmailOptIn = emailOptIn
			user.WhatsAppOptIn = whatsappOptIn
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func testService() (*Service, *stubStore, config.JWTConfig) {
	store := newStubStore()
	jwtCfg := config.JWTConfig{Secret: "test-secret", Issuer: "glasserp-test", ExpirationMinutes: 60}
	svc := NewService(store, jwtCfg, config.PasswordConfig{}, nil)
	return svc, store, jwtCfg
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _, jwtCfg := testService()
	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Asha", Email: "Asha@ShreeGlass.in", Password: "s3cret-pass", Role: enums.UserRoleAccountant,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Email != "asha@shreeglass.in" {
		t.Fatalf("email must be normalized, got %s", created.Email)
	}
	if created.PasswordHash != "" {
		t.Fatal("password hash must not leak from CreateUser")
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Email: "asha@shreeglass.in", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.User.PasswordHash != "" {
		t.Fatal("password hash must not leak from Login")
	}

	claims, err := pkgauth.ParseAccessToken(jwtCfg, result.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Role != enums.UserRoleAccountant || claims.UserID != created.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	svc, _, _ := testService()
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Asha", Email: "asha@shreeglass.in", Password: "s3cret-pass", Role: enums.UserRoleAdmin,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, wrongPass := svc.Login(context.Background(), LoginInput{Email: "asha@shreeglass.in", Password: "nope-nope"})
	_, unknownUser := svc.Login(context.Background(), LoginInput{Email: "ghost@shreeglass.in", Password: "s3cret-pass"})

	for _, err := range []error{wrongPass, unknownUser} {
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Fatal("both failures must produce the same message")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, _ := testService()
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "X", Email: "x@y.in", Password: "short", Role: enums.UserRoleOperator,
	}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "X", Email: "x@y.in", Password: "long-enough", Role: enums.UserRole("janitor"),
	}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad role, got %v", err)
	}
}
