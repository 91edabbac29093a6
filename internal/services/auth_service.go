package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/repositories"
	"tourbooking/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken covers malformed, expired or wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

var _ UserStore = repositories.UserRepository{}

type AuthService struct {
	Users     UserStore
	Secret    []byte
	TTL       time.Duration
	Now       func() time.Time
	Logger    *zap.Logger
	RequestID string
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FirstName   string `json:"first_name" validate:"max=50"`
	LastName    string `json:"last_name" validate:"max=50"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued login: the token and the draft session id it carries.
type Session struct {
	Token     string      `json:"token"`
	SessionID string      `json:"-"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type tokenClaims struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 24 * time.Hour
}

func (s AuthService) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	req.FirstName = utils.NormalizeSpace(req.FirstName)
	req.LastName = utils.NormalizeSpace(req.LastName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := validateStruct(req); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}
	u := models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
		IsActive:     true,
		DateJoined:   s.now(),
	}
	if err := s.Users.Create(ctx, &u); err != nil {
		return models.User{}, wrapInternal(err)
	}
	utils.LogEvent(s.Logger, s.RequestID, "auth", "register", "user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// Login checks the password and issues a token with a fresh session id.
func (s AuthService) Login(ctx context.Context, req LoginRequest) (Session, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return Session{}, err
	}
	u, err := s.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, wrapInternal(err)
	}
	if !u.IsActive {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	sess, err := s.issue(u)
	if err != nil {
		return Session{}, err
	}
	utils.LogEvent(s.Logger, s.RequestID, "auth", "login", "user logged in", zap.Int64("user_id", u.ID))
	return sess, nil
}

func (s AuthService) issue(u models.User) (Session, error) {
	if len(s.Secret) == 0 {
		return Session{}, domain.InternalError{Msg: "jwt secret not configured"}
	}
	now := s.now()
	exp := now.Add(s.ttl())
	sid := uuid.NewString()
	claims := tokenClaims{
		UserID:    u.ID,
		SessionID: sid,
		Email:     u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return Session{}, domain.InternalError{Msg: "sign token", Err: err}
	}
	return Session{Token: token, SessionID: sid, ExpiresAt: exp, User: u}, nil
}

// ParseToken verifies an HS256 token and returns the caller it identifies.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(s.Secret) == 0 {
		return domain.RequestContext{}, ErrInvalidToken
	}
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.RequestContext{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID <= 0 || claims.SessionID == "" {
		return domain.RequestContext{}, ErrInvalidToken
	}
	return domain.RequestContext{
		UserID:    domain.ID(claims.UserID),
		SessionID: claims.SessionID,
		Email:     claims.Email,
	}, nil
}
