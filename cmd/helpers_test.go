package cmd

import (
	"bytes"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/chatpane/internal"
	"github.com/iksnae/chatpane/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	quarterlyID = "0190a3b2-7c4e-7a61-9f3d-2b8c1e5d4a01"
	configID    = "0190a3b2-7c4e-7a61-9f3d-2b8c1e5d4a02"
)

// testEnv is a data directory seeded with the sample sessions and a signed-in
// user, plus a fake backend serving both generation and auth
type testEnv struct {
	dataDir  string
	endpoint *testutil.FakeEndpoint
}

// backendReply answers auth paths with the fixture user and everything else
// with generation
func backendReply(generation testutil.ReplyFunc) testutil.ReplyFunc {
	return func(req testutil.RecordedRequest) (int, string) {
		switch req.Path {
		case "/login", "/signup":
			return http.StatusOK, `{"status":"success","user":{"name":"Ada","email":"ada@example.com"}}`
		case "/forgot-password":
			return http.StatusOK, `{"status":"success"}`
		default:
			return generation(req)
		}
	}
}

func newTestEnv(t *testing.T, generation testutil.ReplyFunc) *testEnv {
	t.Helper()
	env := &testEnv{
		dataDir:  testutil.CreateDataDir(t),
		endpoint: testutil.NewFakeEndpoint(t, backendReply(generation)),
	}

	t.Setenv("CHATPANE_CONFIG", filepath.Join(env.dataDir, "absent.toml"))
	t.Setenv("CHATPANE_BASE_URL", env.endpoint.URL)
	t.Setenv("CHATPANE_AUTH_URL", env.endpoint.URL)
	t.Setenv("CHATPANE_MODEL", "")
	t.Setenv("CHATPANE_DATA_DIR", "")

	fixed := time.Date(2024, time.March, 14, 18, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })
	return env
}

// run executes the root command with args against the environment
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetCommandFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	full := append(append([]string{}, args...), "--data-dir", e.dataDir)
	if !hasArg(args, "--storage") {
		full = append(full, "--storage", internal.StorageFile)
	}
	rootCmd.SetArgs(full)

	err := rootCmd.Execute()
	return out.String(), err
}

// sessions loads what the commands persisted
func (e *testEnv) sessions(t *testing.T) []internal.Session {
	t.Helper()
	slot, err := internal.NewFileSlot(e.dataDir)
	if err != nil {
		t.Fatalf("NewFileSlot() error = %v", err)
	}
	return internal.NewSessionStore(slot).LoadAll()
}

// resetCommandFlags restores every flag to its default; cobra keeps parsed
// values in package variables between Execute calls
func resetCommandFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommandFlags(sub)
	}
}

func hasArg(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func findByID(sessions []internal.Session, id string) (internal.Session, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return internal.Session{}, false
}
