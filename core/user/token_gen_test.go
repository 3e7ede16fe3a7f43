package user

import (
	"testing"
	"time"

	"github.com/trezcool/safari/core"
)

func TestMakeVerifyToken(t *testing.T) {
	conf := core.NewTestConfig()
	svc := newService(conf, nil, nil, core.NopLogger())

	now := time.Now()
	usr := User{
		ID:        "5b0d2c1e-8f1a-4a4e-9c52-6c1f3b7e2d10",
		Name:      "T",
		Username:  "t",
		Email:     "t@test.test",
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("pwd")

	validToken := svc.makeToken(usr)

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	svc.tokenGen.NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := svc.makeToken(usr)
	svc.tokenGen.NowFunc = time.Now // reset

	loggedIn := usr
	loggedIn.LastLogin = now.Add(time.Minute)

	pwdChanged := usr
	_ = pwdChanged.SetPassword("new-pwd")

	tests := []struct {
		name    string
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", usr: usr, wantErr: core.ErrInvalidToken},
		{name: "invalid token", usr: usr, token: "HE4TS-sigsig-sig", wantErr: core.ErrInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: core.ErrTokenExpired},
		{name: "used: logged in since", usr: loggedIn, token: validToken, wantErr: core.ErrInvalidToken},
		{name: "used: password changed", usr: pwdChanged, token: validToken, wantErr: core.ErrInvalidToken},
		{name: "valid token", usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.verifyToken(tt.usr, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
