package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	tsEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// TokenGenerator makes and checks day-granular signed tokens: "<base32 days since 2001>-<hmac>".
// The signed value should change once the token has been used (e.g. include a password hash or a status).
type TokenGenerator struct {
	salt    []byte
	secret  string
	maxAge  time.Duration
	NowFunc func() time.Time // mockable
}

func NewTokenGenerator(salt, secret string, maxAge time.Duration) *TokenGenerator {
	return &TokenGenerator{salt: []byte(salt), secret: secret, maxAge: maxAge, NowFunc: time.Now}
}

func (gen *TokenGenerator) Make(value []byte) string {
	return gen.makeWithTimestamp(value, numDaysSince2001(gen.NowFunc()))
}

func (gen *TokenGenerator) Verify(value []byte, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return ErrInvalidToken
	}

	data, err := tsEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidToken
	}

	// check that token has not been tampered with
	if subtle.ConstantTimeCompare([]byte(gen.makeWithTimestamp(value, ts)), []byte(token)) == 0 {
		return ErrInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(gen.NowFunc()) - ts) > int(gen.maxAge/(24*time.Hour)) {
		return ErrTokenExpired
	}
	return nil
}

func (gen *TokenGenerator) makeWithTimestamp(value []byte, ts int) string {
	tsB32 := tsEncoding.EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, gen.sign(append(value, strconv.Itoa(ts)...)))
}

func (gen *TokenGenerator) sign(val []byte) string {
	key := sha256.Sum256(append(append([]byte{}, gen.salt...), gen.secret...))
	h := hmac.New(sha256.New, key[:])
	_, _ = h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

// EncodeUID base64 encodes an entity id for use in links.
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func DecodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}
