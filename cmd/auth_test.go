package cmd

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/iksnae/chatpane/internal"
	"github.com/iksnae/chatpane/testutil"
)

func TestLoginCommand(t *testing.T) {
	env := newTestEnv(t, testutil.Success("unused"))

	if _, err := env.run(t, "logout"); err != nil {
		t.Fatalf("logout error = %v", err)
	}
	if _, err := env.run(t, "whoami"); !errors.Is(err, internal.ErrNotLoggedIn) {
		t.Errorf("whoami after logout error = %v", err)
	}

	out, err := env.run(t, "login", "--email", "ada@example.com", "--password", "secret")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Logged in as Ada <ada@example.com>") {
		t.Errorf("login output = %q", out)
	}

	rec := env.endpoint.Requests()[0]
	if rec.Path != "/login" || rec.Fields["email"] != "ada@example.com" || rec.Fields["password"] != "secret" {
		t.Errorf("login request = %+v", rec)
	}

	out, err = env.run(t, "whoami")
	if err != nil || strings.TrimSpace(out) != "Ada <ada@example.com>" {
		t.Errorf("whoami = %q, %v", out, err)
	}
}

func TestLoginCommand_Errors(t *testing.T) {
	env := newTestEnv(t, testutil.Success("unused"))

	if _, err := env.run(t, "login", "--password", "x"); err == nil || !strings.Contains(err.Error(), "--email is required") {
		t.Errorf("login without email error = %v", err)
	}
	if !internal.IsTerminal(os.Stdin) {
		if _, err := env.run(t, "login", "--email", "a@b.c"); err == nil || !strings.Contains(err.Error(), "--password is required") {
			t.Errorf("login without password error = %v", err)
		}
	}
}

func TestLoginCommand_Rejected(t *testing.T) {
	env := newTestEnv(t, testutil.Success("unused"))
	rejecting := testutil.NewFakeEndpoint(t, testutil.Status(http.StatusUnauthorized, `{"detail":"Invalid email or password"}`))
	t.Setenv("CHATPANE_AUTH_URL", rejecting.URL)

	_, err := env.run(t, "login", "-e", "ada@example.com", "-p", "wrong")
	if err == nil || !strings.Contains(err.Error(), "Invalid email or password") {
		t.Errorf("login error = %v", err)
	}
}

func TestSignupCommand(t *testing.T) {
	env := newTestEnv(t, testutil.Success("unused"))
	pic := testutil.WriteTempFile(t, "me.png", []byte("png"))

	out, err := env.run(t, "signup", "--name", "Ada", "--email", "ada@example.com", "--password", "secret", "--profile-pic", pic)
	if err != nil {
		t.Fatalf("signup error = %v", err)
	}
	if !strings.Contains(out, "Account created. Logged in as Ada <ada@example.com>") {
		t.Errorf("signup output = %q", out)
	}

	rec := env.endpoint.Requests()[0]
	if rec.Path != "/signup" || rec.Fields["name"] != "Ada" || rec.FileName != "me.png" {
		t.Errorf("signup request = %+v", rec)
	}

	if _, err := env.run(t, "signup", "--email", "x@y.z", "--password", "p"); err == nil || !strings.Contains(err.Error(), "--name is required") {
		t.Errorf("signup without name error = %v", err)
	}
}

func TestForgotPasswordCommand(t *testing.T) {
	env := newTestEnv(t, testutil.Success("unused"))

	out, err := env.run(t, "forgot-password", "--email", "ada@example.com", "--new-password", "n3w")
	if err != nil {
		t.Fatalf("forgot-password error = %v", err)
	}
	if !strings.Contains(out, "Password updated successfully. Please log in.") {
		t.Errorf("forgot-password output = %q", out)
	}
	if got := env.endpoint.Requests()[0].Fields["newPassword"]; got != "n3w" {
		t.Errorf("newPassword = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName(&internal.User{Email: "a@b.c"}); got != "a@b.c" {
		t.Errorf("displayName(no name) = %q", got)
	}
	if got := displayName(&internal.User{Name: "Ada", Email: "a@b.c"}); got != "Ada <a@b.c>" {
		t.Errorf("displayName() = %q", got)
	}
}
