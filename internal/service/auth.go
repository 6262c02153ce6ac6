// Package service implements the auth and finance operations on top of the
// store. Every finance operation takes the caller's session explicitly and runs
// it through the ownership policy before touching data.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/policy"
	"finance_tracker/internal/store"
	"finance_tracker/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const refreshTokenBytes = 40

var (
	emailRegexp    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	currencyRegexp = regexp.MustCompile(`^[A-Z]{3}$`)
)

// AuthConfig tunes token lifetimes and credential policies
type AuthConfig struct {
	JWTSecret         string
	JWTIssuer         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	PasswordPolicy    string
	HashPolicy        string
	BcryptCost        int
	RevealLoginErrors bool
}

// RegisterInput is the data needed to create a user
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Currency  string
}

// ClientInfo describes the client a session is issued to
type ClientInfo struct {
	UserAgent string
	IP        string
}

// AuthResult is what a successful register, login or refresh hands back
type AuthResult struct {
	AccessToken    string
	RefreshToken   string
	RefreshExpires time.Time
	User           *domain.User
}

// AuthService registers users and manages their sessions
type AuthService struct {
	store *store.Store
	cfg   AuthConfig
	now   func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService returns an AuthService on st
func NewAuthService(st *store.Store, cfg AuthConfig) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	return &AuthService{store: st, cfg: cfg, now: time.Now}
}

// CreateUser validates and stores a new user without opening a session
func (s *AuthService) CreateUser(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email)) // Case-insensitive uniqueness
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "USD"
	}

	if !emailRegexp.MatchString(in.Email) {
		return nil, domain.InvalidInput("invalid email address")
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, domain.InvalidInput("first and last name are required")
	}
	if !currencyRegexp.MatchString(in.Currency) {
		return nil, domain.InvalidInput("currency must be a 3 letter ISO code")
	}
	if err := checkPassword(s.cfg.PasswordPolicy, in.Password); err != nil {
		return nil, err
	}

	existing, err := s.store.FindUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("email already registered")
	}

	hash, salt, err := hashPassword(s.cfg.HashPolicy, in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		Salt:         salt,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Currency:     in.Currency,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflict("email already registered") // Lost a race with a concurrent registration
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User registered")
	return user, nil
}

// Register creates a user and signs them in
func (s *AuthService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*AuthResult, error) {
	user, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, client)
}

// Login checks credentials and opens a new session family
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email)) // Stored lowercased
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		verifyPassword(s.dummy(), "", password) // Keep response time independent of whether the email exists
		logrus.WithFields(logrus.Fields{"ip": client.IP}).Warn("Login for unknown email")
		return nil, s.loginFailed("account not found")
	}
	if !verifyPassword(user.PasswordHash, user.Salt, password) {
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "ip": client.IP}).Warn("Login with wrong password")
		return nil, s.loginFailed("wrong password")
	}
	return s.startSession(ctx, user, client)
}

// Refresh redeems a refresh token for a new access token and a new refresh
// token. A token can be redeemed once; presenting it again revokes every
// session descended from the same login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.Unauthenticated("refresh token required")
	}
	prev, err := s.store.FindSessionByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, domain.Unauthenticated("invalid refresh token")
	}
	now := s.now().UTC()
	if prev.RevokedAt != nil {
		return nil, s.replayed(ctx, prev, now)
	}
	if !prev.Active(now) {
		return nil, domain.Unauthenticated("refresh token expired")
	}
	user, err := s.store.FindUser(ctx, prev.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.Unauthenticated("invalid refresh token")
	}

	token, next, err := s.newSession(user, client, now)
	if err != nil {
		return nil, err
	}
	next.FamilyID = prev.FamilyID
	next.ParentID = &prev.ID
	if err := s.store.RotateSession(ctx, prev, next, now); err != nil {
		if errors.Is(err, store.ErrStale) {
			return nil, s.replayed(ctx, prev, now) // Another request rotated this token first
		}
		return nil, err
	}
	return s.result(user, token, next)
}

// Logout revokes the session behind refreshToken. Unknown and already revoked
// tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	sess, err := s.store.FindSessionByTokenHash(ctx, hashToken(refreshToken))
	if err != nil || sess == nil {
		return err
	}
	if err := s.store.RevokeSession(ctx, sess.ID, s.now().UTC()); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": sess.UserID, "session_id": sess.ID}).Info("User logged out")
	return nil
}

// VerifyAccessToken turns a bearer token into a session. Anything invalid
// yields the anonymous session.
func (s *AuthService) VerifyAccessToken(token string) policy.Session {
	if token == "" {
		return policy.Session{}
	}
	claims, err := utils.ParseJWT(token, s.cfg.JWTSecret, s.cfg.JWTIssuer)
	if err != nil {
		return policy.Session{}
	}
	return policy.Session{UserID: claims.UserID, Email: claims.Email}
}

// Sessions lists the caller's active sessions
func (s *AuthService) Sessions(ctx context.Context, sess policy.Session) ([]domain.Session, error) {
	if err := policy.Authorize(sess, policy.OpList, sess.UserID); err != nil {
		return nil, err
	}
	return s.store.ListActiveSessions(ctx, sess.UserID, s.now().UTC())
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User, client ClientInfo) (*AuthResult, error) {
	token, sess, err := s.newSession(user, client, s.now().UTC())
	if err != nil {
		return nil, err
	}
	sess.FamilyID = sess.ID
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "session_id": sess.ID}).Info("Session started")
	return s.result(user, token, sess)
}

func (s *AuthService) newSession(user *domain.User, client ClientInfo, now time.Time) (string, *domain.Session, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", nil, err
	}
	token := hex.EncodeToString(b)
	sess := &domain.Session{
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
		UserAgent: truncate(client.UserAgent, 255),
		IP:        truncate(client.IP, 64),
	}
	sess.ID = uuid.NewString()
	return token, sess, nil
}

func (s *AuthService) result(user *domain.User, refreshToken string, sess *domain.Session) (*AuthResult, error) {
	access, err := utils.GenerateJWT(user.ID, user.Email, s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:    access,
		RefreshToken:   refreshToken,
		RefreshExpires: sess.ExpiresAt,
		User:           user,
	}, nil
}

func (s *AuthService) replayed(ctx context.Context, sess *domain.Session, now time.Time) error {
	n, err := s.store.RevokeFamily(ctx, sess.FamilyID, now)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   sess.UserID,
		"family_id": sess.FamilyID,
		"revoked":   n,
	}).Warn("Refresh token reused, session family revoked")
	return domain.Unauthenticated("refresh token already used")
}

// loginFailed hides why a login failed unless configured to reveal it
func (s *AuthService) loginFailed(reason string) error {
	if s.cfg.RevealLoginErrors {
		return domain.Unauthenticated("%s", reason)
	}
	return domain.Unauthenticated("Authentication failed")
}

// dummy is a hash to compare against when the email is unknown
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, _, err := hashPassword(HashPlain, "not-a-real-password", s.cfg.BcryptCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
