// Package identity is the credential side of the system: accounts with hashed passwords
// and signed session tokens. Profiles live in the document store and are keyed by the
// uid issued here.
package identity

import (
	"context"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"strings"
	"time"
)

const minPasswordLength = 6

type accountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	GetByID(ctx context.Context, id string) (*entities.Account, error)
}

type Provider struct {
	accounts accountRepository
	tokens   tokens
	validate *validator.Validate
	now      func() time.Time
}

func NewProvider(accounts accountRepository, secretKey string, tokenTTL time.Duration) *Provider {
	return &Provider{
		accounts: accounts,
		tokens:   tokens{secretKey: []byte(secretKey), ttl: tokenTTL},
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateUser registers credentials and returns the new uid.
func (p *Provider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	email = strings.TrimSpace(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	account := &entities.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
	}

	if err = p.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return "", ErrEmailInUse
		}
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeIdentity).Errorf("failed to create account: %v", err)
		return "", err
	}

	log.Infof("account %s created", account.ID)
	return account.ID, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (string, entities.Identity, error) {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		return "", entities.Identity{}, err
	}
	if account == nil || bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) != nil {
		return "", entities.Identity{}, ErrInvalidCredentials
	}

	token, err := p.tokens.generate(account.ID, account.Email, account.DisplayName, p.now())
	if err != nil {
		return "", entities.Identity{}, err
	}
	return token, toIdentity(account), nil
}

// Authenticate resolves a session token to the identity of a still existing account.
func (p *Provider) Authenticate(ctx context.Context, token string) (entities.Identity, error) {
	c, err := p.tokens.parse(token)
	if err != nil {
		log.Debugf("rejected session token: %v", err)
		return entities.Identity{}, ErrInvalidToken
	}

	account, err := p.accounts.GetByID(ctx, c.Subject)
	if err != nil {
		return entities.Identity{}, err
	}
	if account == nil {
		return entities.Identity{}, ErrInvalidToken
	}
	return toIdentity(account), nil
}

func (p *Provider) CurrentIdentity(ctx context.Context) (entities.Identity, bool) {
	return FromContext(ctx)
}

func toIdentity(account *entities.Account) entities.Identity {
	return entities.Identity{UID: account.ID, Email: account.Email, DisplayName: account.DisplayName}
}
