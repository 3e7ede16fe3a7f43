package user

import (
	"testing"

	"github.com/trezcool/safari/core"
)

func TestPasswordPolicy(t *testing.T) {
	LoadCommonPasswords(core.NopLogger())

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "Ab1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Abcd 1234!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "no special", pwd: "Abcdefgh1", wantTag: pwdComplexityTag},
		{name: "no upper", pwd: "abcdefg1!", wantTag: pwdComplexityTag},
		{name: "similar to username", pwd: "Amani_2025", wantTag: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd", wantTag: pwdNoCommonTag},
		{name: "ok", pwd: "Kilimanjaro#58"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passwordPolicyTag(tt.pwd, "Amani K", "amani_2025", "amani@test.cd"); got != tt.wantTag {
				t.Errorf("passwordPolicyTag() = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestNewUserValidation(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	tests := []struct {
		name       string
		nu         NewUser
		wantFields []string
	}{
		{
			name:       "username or email",
			nu:         NewUser{Name: "Zawadi", Password: "Kilimanjaro#58", PasswordConfirm: "Kilimanjaro#58"},
			wantFields: []string{"email", "username"},
		},
		{
			name:       "unknown role",
			nu:         NewUser{Name: "Zawadi", Email: "z@test.cd", Password: "Kilimanjaro#58", PasswordConfirm: "Kilimanjaro#58", Roles: []string{"student:"}},
			wantFields: []string{"roles"},
		},
		{
			name:       "password confirm",
			nu:         NewUser{Name: "Zawadi", Email: "z@test.cd", Password: "Kilimanjaro#58", PasswordConfirm: "nope"},
			wantFields: []string{"password_confirm"},
		},
		{
			name: "valid",
			nu:   NewUser{Name: "Zawadi", Email: "z@test.cd", Password: "Kilimanjaro#58", PasswordConfirm: "Kilimanjaro#58", Roles: []string{RoleStaffEditor}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.TranslateValidationErrors(validate.Struct(tt.nu), translator)
			if tt.wantFields == nil {
				if err != nil {
					t.Errorf("validate.Struct() unexpected error = %v", err)
				}
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("validate.Struct() error = %v, want *core.ValidationError", err)
			}
			got := vErr.FieldNames()
			if len(got) != len(tt.wantFields) {
				t.Fatalf("fields = %v, want %v", got, tt.wantFields)
			}
			for i := range got {
				if got[i] != tt.wantFields[i] {
					t.Errorf("fields = %v, want %v", got, tt.wantFields)
				}
			}
		})
	}
}
