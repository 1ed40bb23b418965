package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventrsvp/internal/domain"
)

type stubHasher struct{}

func (stubHasher) GenerateSalt() (string, error)       { return "salt", nil }
func (stubHasher) Hash(salt, password string) (string, error) { return "hash:" + salt + ":" + password, nil }
func (stubHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	return "token-" + userID, nil
}

type stubUserRepo struct {
	byEmail map[string]*domain.User
	created *domain.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	user.ID = "u-new"
	s.created = user
	return nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "alice@example.com", "longenough", nil},
		{"bad email", "not-an-email", "longenough", domain.ErrInvalidInput},
		{"short password", "alice@example.com", "short", domain.ErrInvalidInput},
		{"duplicate email", "taken@example.com", "longenough", domain.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubUserRepo{byEmail: map[string]*domain.User{
				"taken@example.com": {ID: "u1", Email: "taken@example.com"},
			}}
			svc := NewAuthService(repo, stubHasher{}, stubIssuer{}, time.Hour)

			user, err := svc.SignUp(context.Background(), tt.email, tt.password, "Alice")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID == "" || user.PasswordHash == "" || user.Salt == "" {
				t.Fatalf("expected populated user, got %+v", user)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := &stubUserRepo{byEmail: map[string]*domain.User{
		"alice@example.com": {
			ID:           "u1",
			Email:        "alice@example.com",
			Salt:         "salt",
			PasswordHash: "hash:salt:correct",
		},
	}}
	svc := NewAuthService(repo, stubHasher{}, stubIssuer{}, time.Hour)
	ctx := context.Background()

	token, err := svc.Login(ctx, "Alice@Example.com", "correct")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "token-u1" {
		t.Fatalf("unexpected token %q", token)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected error for wrong password")
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
