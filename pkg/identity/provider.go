package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"julianmorley.ca/con-plar/storefront/pkg/apperr"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength is the most bcrypt will hash, in bytes
	MaxPasswordLength = 72
)

// ErrEmailTaken is returned by a CustomerRepository when the email is already registered
var ErrEmailTaken = errors.New("email already exists")

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) (string, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
}

// SessionStore maps opaque tokens to identities. Get returns nil and no error for unknown tokens.
type SessionStore interface {
	Put(ctx context.Context, token string, identity models.Identity, ttl time.Duration) error
	Get(ctx context.Context, token string) (*models.Identity, error)
	Delete(ctx context.Context, token string) error
}

type Session struct {
	Token     string          `json:"token"`
	User      models.Identity `json:"user"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Provider is email and password authentication backed by the customers collection
type Provider struct {
	customers CustomerRepository
	sessions  SessionStore
	ttl       time.Duration
	hashCost  int
	logger    *zap.Logger
}

func NewProvider(customers CustomerRepository, sessions SessionStore, ttl time.Duration, logger *zap.Logger) *Provider {
	return &Provider{
		customers: customers,
		sessions:  sessions,
		ttl:       ttl,
		hashCost:  bcrypt.DefaultCost,
		logger:    global.LoggerOrNop(logger),
	}
}

// SignUp registers a customer and signs them in
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Newf(apperr.KindValidation, "password must be at least %d characters", MinPasswordLength).
			With("field", "password")
	}
	if len(password) > MaxPasswordLength {
		return nil, apperr.Newf(apperr.KindValidation, "password must be at most %d bytes", MaxPasswordLength).
			With("field", "password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), p.hashCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to process password", err)
	}

	customer := &models.Customer{
		Email:        email,
		PasswordHash: string(hashedPassword),
		DisplayName:  strings.TrimSpace(displayName),
	}
	if customer.DisplayName == "" {
		customer.DisplayName = strings.Split(email, "@")[0]
	}
	customer.SetTimestamps()

	id, err := p.customers.Create(ctx, customer)
	if errors.Is(err, ErrEmailTaken) {
		return nil, apperr.New(apperr.KindConflict, "email already registered").With("field", "email")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to create account", err)
	}
	customer.ID = id

	p.logger.Info("customer registered", zap.String("user_id", id))
	return p.startSession(ctx, customer.Identity())
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidCredentials, "invalid email or password")
	}

	customer, err := p.customers.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to look up account", err)
	}
	if customer == nil {
		return nil, apperr.New(apperr.KindInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindInvalidCredentials, "invalid email or password")
	}

	return p.startSession(ctx, customer.Identity())
}

func (p *Provider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := p.sessions.Delete(ctx, token); err != nil {
		return apperr.Wrap(apperr.KindTransient, "failed to sign out", err)
	}
	return nil
}

// Current resolves a token to the signed-in user; nil means unauthenticated
func (p *Provider) Current(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, nil
	}
	identity, err := p.sessions.Get(ctx, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to resolve session", err)
	}
	return identity, nil
}

func (p *Provider) startSession(ctx context.Context, identity models.Identity) (*Session, error) {
	token := uuid.NewString()
	if err := p.sessions.Put(ctx, token, identity, p.ttl); err != nil {
		return nil, apperr.Wrap(apperr.KindTransient, "failed to start session", err)
	}
	return &Session{Token: token, User: identity, ExpiresAt: time.Now().UTC().Add(p.ttl)}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.New(apperr.KindValidation, "a valid email address is required").With("field", "email")
	}
	return email, nil
}
