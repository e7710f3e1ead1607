package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTokenTTL is how long an admin token stays valid when
// ADMIN_JWT_EXPIRATION_HOURS is unset.
const DefaultTokenTTL = 24 * time.Hour

const minTokenTTL = time.Minute

// JWTConfig controls signing and expiry of the admin tokens that guard
// corpus refreshes.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// NewJWTConfigFrom builds a JWTConfig from a signing secret and a token
// lifetime. The lifetime is a whole number of hours ("12") or a Go duration
// ("90m"); empty means DefaultTokenTTL.
func NewJWTConfigFrom(secret, lifetime string) (*JWTConfig, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("ADMIN_JWT_SECRET is required but not set")
	}

	ttl, err := parseTokenTTL(lifetime)
	if err != nil {
		return nil, err
	}
	if ttl < minTokenTTL {
		return nil, fmt.Errorf("ADMIN_JWT_EXPIRATION_HOURS must be at least %s, got %s", minTokenTTL, ttl)
	}

	return &JWTConfig{Secret: secret, TTL: ttl}, nil
}

func parseTokenTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTokenTTL, nil
	}
	if hours, err := strconv.Atoi(s); err == nil {
		return time.Duration(hours) * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ADMIN_JWT_EXPIRATION_HOURS %q: want hours or a duration such as 90m", s)
	}
	return d, nil
}
