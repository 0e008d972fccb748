package cmd

import (
	"strings"
	"testing"

	"github.com/iksnae/chatpane/testutil"
)

func TestHealthcheckCommand(t *testing.T) {
	env := newTestEnv(t, testutil.Success("unused"))

	out, err := env.run(t, "healthcheck", "--details")
	if err != nil {
		t.Fatalf("healthcheck error = %v\n%s", err, out)
	}
	for _, want := range []string{
		"Configuration valid",
		"Model: Llama 70b",
		"Found 2 conversation(s)",
		"• chatpane.sessions",
		"• chatpane.user",
		"Signed in as Ada <ada@example.com>",
		"Generation endpoint reachable",
		"Auth endpoint reachable",
		"Health check passed!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("healthcheck output missing %q:\n%s", want, out)
		}
	}
}

func TestHealthcheckCommand_Failures(t *testing.T) {
	env := newTestEnv(t, testutil.Success("unused"))
	t.Setenv("CHATPANE_BASE_URL", "http://127.0.0.1:1")

	if _, err := env.run(t, "logout"); err != nil {
		t.Fatalf("logout error = %v", err)
	}

	out, err := env.run(t, "healthcheck")
	if err == nil || !strings.Contains(err.Error(), "health check failed") {
		t.Fatalf("healthcheck error = %v, want failure", err)
	}
	for _, want := range []string{"Not signed in", "Generation endpoint unreachable", "Auth endpoint reachable", "Health check failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("healthcheck output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "• chatpane.sessions") {
		t.Error("key listing should only appear with --details")
	}
}

func TestHealthcheckCommand_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, testutil.Success("unused"))
	t.Setenv("CHATPANE_MODEL", "Nope")

	out, err := env.run(t, "healthcheck")
	if err == nil {
		t.Fatal("healthcheck should fail on an invalid configuration")
	}
	if !strings.Contains(out, "Configuration invalid") {
		t.Errorf("healthcheck output = %q", out)
	}
}
