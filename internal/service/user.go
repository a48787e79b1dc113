package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kmatsui/go-todo-service/internal/auth"
	"github.com/kmatsui/go-todo-service/internal/model"
	"github.com/kmatsui/go-todo-service/internal/repository"
)

// defaultTokenTTLMinutes is the token lifetime used when none is configured.
const defaultTokenTTLMinutes = 30

// UserService handles registration and password login.
type UserService struct {
	store      repository.UserStore
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenCodec
	ttlMinutes int
}

// NewUserService creates a UserService. A non-positive ttlMinutes falls back
// to the 30 minute default.
func NewUserService(store repository.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenCodec, ttlMinutes int) *UserService {
	if ttlMinutes <= 0 {
		ttlMinutes = defaultTokenTTLMinutes
	}
	return &UserService{store: store, hasher: hasher, tokens: tokens, ttlMinutes: ttlMinutes}
}

// Register hashes the candidate's password, persists the user, and returns a
// view with the password omitted. Uniqueness violations surface as
// *model.DuplicateError.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.UserView, error) {
	ctx, span := tracer.Start(ctx, "UserService.Register",
		attributeUsername(req.Username),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		return model.UserView{}, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.UserView{}, err
	}

	stored, err := s.store.InsertUser(ctx, model.User{
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		HashedPassword: hashed,
	})
	if err != nil {
		return model.UserView{}, err
	}
	return stored.View(), nil
}

// Login verifies the credentials and mints a bearer token with the username
// as subject. An unknown username and a wrong password fail identically so
// the response never reveals which usernames exist.
func (s *UserService) Login(ctx context.Context, username, password string) (model.Token, error) {
	ctx, span := tracer.Start(ctx, "UserService.Login",
		attributeUsername(username),
	)
	defer span.End()

	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return model.Token{}, err
	}
	if user == nil || !s.hasher.Verify(password, user.HashedPassword) {
		return model.Token{}, model.ErrAuthenticationFailed
	}

	token, err := s.tokens.Encode(map[string]any{"sub": user.Username}, s.ttlMinutes)
	if err != nil {
		return model.Token{}, err
	}
	return model.Token{AccessToken: token, TokenType: "bearer"}, nil
}

func attributeUsername(username string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("user.username", username))
}
