package user

import (
	"bytes"
	"time"

	"github.com/trezcool/safari/core"
)

const tokenSalt = "safari.core.user.token_gen"

func newTokenGenerator(conf *core.Config) *core.TokenGenerator {
	return core.NewTokenGenerator(tokenSalt, conf.SecretKey, conf.PasswordResetTimeoutDelta)
}

// makeToken generates a password reset token for a given User.
// It stops verifying once the password changes or the user logs in again.
func (svc *service) makeToken(usr User) string {
	return svc.tokenGen.Make(hashValue(usr))
}

func (svc *service) verifyToken(usr User, token string) error {
	return svc.tokenGen.Verify(hashValue(usr), token)
}

func hashValue(usr User) []byte {
	var val bytes.Buffer
	val.WriteString(usr.ID)
	val.Write(usr.PasswordHash)
	if !usr.LastLogin.IsZero() {
		val.WriteString(usr.LastLogin.UTC().Format(time.RFC3339))
	}
	return val.Bytes()
}
