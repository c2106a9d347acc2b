package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPNotFound = errors.New("no pending verification for this email")
	ErrOTPMismatch = errors.New("verification code does not match")
)

const otpDigits = 6

// PendingSignup is the registration payload parked in redis until the
// emailed code is confirmed. No user row exists before verification.
type PendingSignup struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Code         string `json:"code"`
}

// OTPService stores short-lived one-time codes in redis. Signup payloads and
// password-reset codes live under separate key prefixes so one flow cannot
// satisfy the other.
type OTPService struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOTPService(rdb *redis.Client, ttl time.Duration) *OTPService {
	return &OTPService{rdb: rdb, ttl: ttl}
}

// GenerateCode returns a random numeric code of fixed length.
func GenerateCode() (string, error) {
	max := big.NewInt(10)
	code := make([]byte, otpDigits)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

func signupKey(email string) string {
	return "otp:signup:" + email
}

func resetKey(email string) string {
	return "otp:reset:" + email
}

// SaveSignup parks a pending registration until the code is verified or the
// TTL expires. Re-registering overwrites the previous attempt.
func (s *OTPService) SaveSignup(ctx context.Context, pending PendingSignup) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, signupKey(pending.Email), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store signup code: %w", err)
	}
	return nil
}

// VerifySignup checks the code for a pending registration and consumes it
// on success.
func (s *OTPService) VerifySignup(ctx context.Context, email, code string) (*PendingSignup, error) {
	payload, err := s.rdb.Get(ctx, signupKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load signup code: %w", err)
	}

	var pending PendingSignup
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, fmt.Errorf("decode pending signup: %w", err)
	}
	if !codesEqual(pending.Code, code) {
		return nil, ErrOTPMismatch
	}

	s.rdb.Del(ctx, signupKey(email))
	return &pending, nil
}

// SaveReset stores a password-reset code for the email.
func (s *OTPService) SaveReset(ctx context.Context, email, code string) error {
	if err := s.rdb.Set(ctx, resetKey(email), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	return nil
}

// VerifyReset checks a password-reset code and consumes it on success.
func (s *OTPService) VerifyReset(ctx context.Context, email, code string) error {
	stored, err := s.rdb.Get(ctx, resetKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("load reset code: %w", err)
	}
	if !codesEqual(stored, code) {
		return ErrOTPMismatch
	}

	s.rdb.Del(ctx, resetKey(email))
	return nil
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
