package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lukereid/focusbuddy/pkg/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	users, err := store.OpenUsers(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("OpenUsers: %v", err)
	}
	return NewService(users)
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name      string
		userName  string
		email     string
		password  string
		badFields []string
	}{
		{"all valid", "Luke", "luke@example.com", "secret1", nil},
		{"empty name", "", "luke@example.com", "secret1", []string{"name"}},
		{"whitespace name", "   ", "luke@example.com", "secret1", []string{"name"}},
		{"email without at", "Luke", "not-an-email", "secret1", []string{"email"}},
		{"empty email", "Luke", "", "secret1", []string{"email"}},
		{"short password", "Luke", "luke@example.com", "12345", []string{"password"}},
		{"everything wrong", "", "nope", "x", []string{"name", "email", "password"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(t)
			u, err := svc.Register(tc.userName, tc.email, tc.password)

			if len(tc.badFields) == 0 {
				if err != nil {
					t.Fatalf("Register: %v", err)
				}
				if u == nil || u.Email != tc.email {
					t.Fatalf("user = %+v", u)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if len(verr.Fields) != len(tc.badFields) {
				t.Fatalf("Fields = %v, want keys %v", verr.Fields, tc.badFields)
			}
			for _, f := range tc.badFields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("missing field error for %q in %v", f, verr.Fields)
				}
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Register("Luke", "luke@example.com", "secret1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register("Luke Again", "luke@example.com", "other-pass"); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("duplicate Register err = %v, want ErrEmailTaken", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Register("Luke", "luke@example.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	u, err := svc.Login("luke@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Name != "Luke" {
		t.Errorf("Name = %q, want Luke", u.Name)
	}

	// Leading and trailing whitespace in the email is tolerated.
	if _, err := svc.Login("  luke@example.com  ", "secret1"); err != nil {
		t.Errorf("Login with padded email: %v", err)
	}

	if _, err := svc.Login("luke@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("ghost@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}
