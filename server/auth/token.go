// Package auth contains code to ensure users are authorized to use the server after they have logged in.
package auth

import (
	"fmt"
	"io"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type (
	// Tokenizer creates and reads tokens from http traffic.
	Tokenizer interface {
		Create(username string) (string, error)
		ReadUsername(tokenString string) (string, error)
	}

	// TokenizerConfig contains fields which describe a Tokenizer.
	TokenizerConfig struct {
		// Key signs tokens.  When empty, a random key is read from KeyReader.
		Key []byte
		// KeyReader is used to generate a token key if none is configured.
		KeyReader io.Reader
		// TimeFunc is a function which should supply the current time since the unix epoch.
		// Used to set the length of time the token is valid.
		TimeFunc func() int64
		// ValidSec is the length of time the token is valid from the issuing time, in seconds.
		ValidSec int64
	}

	// JwtTokenizer implements the Tokenizer interface with json web tokens.
	JwtTokenizer struct {
		method jwt.SigningMethod
		key    interface{}
		TokenizerConfig
	}

	jwtUserClaims struct {
		jwt.RegisteredClaims // username stored in Subject ("sub") field
	}
)

// NewTokenizer creates a Tokenizer from the config, generating a random key if none is set.
func (cfg TokenizerConfig) NewTokenizer() (Tokenizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating tokenizer: validation: %w", err)
	}
	key := cfg.Key
	if len(key) == 0 {
		key = make([]byte, 64)
		if _, err := cfg.KeyReader.Read(key); err != nil {
			return nil, fmt.Errorf("generating tokenizer key: %w", err)
		}
	}
	t := JwtTokenizer{
		method:          jwt.SigningMethodHS256,
		key:             key,
		TokenizerConfig: cfg,
	}
	return t, nil
}

// validate ensures the configuration has no errors.
func (cfg TokenizerConfig) validate() error {
	switch {
	case len(cfg.Key) == 0 && cfg.KeyReader == nil:
		return fmt.Errorf("key or key reader required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.ValidSec <= 0:
		return fmt.Errorf("positive valid second count required")
	}
	return nil
}

// Create converts a username to a token string.
func (j JwtTokenizer) Create(username string) (string, error) {
	now := j.TimeFunc()
	expiresAt := now + j.ValidSec
	claims := jwtUserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			NotBefore: jwt.NewNumericDate(time.Unix(now, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
		},
	}
	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString(j.key)
}

// ReadUsername extracts the username from the token string.
func (j JwtTokenizer) ReadUsername(tokenString string) (string, error) {
	var claims jwtUserClaims
	parser := jwt.NewParser(jwt.WithTimeFunc(func() time.Time {
		return time.Unix(j.TimeFunc(), 0)
	}))
	if _, err := parser.ParseWithClaims(tokenString, &claims, j.keyFunc); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// keyFunc ensures the key type (method) of the token is correct before returning the key.
func (j JwtTokenizer) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != j.method {
		return nil, fmt.Errorf("incorrect authorization signing method")
	}
	return j.key, nil
}
