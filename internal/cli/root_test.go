package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-server-go/internal/client"
	"inventory-server-go/internal/client/credentials"
	platformerrors "inventory-server-go/internal/platform/errors"
)

const sessionBody = `{"accessToken":"access-token","refreshToken":"refresh-token","idToken":"id-token","tokenType":"Bearer","expiresIn":900}`

// runCLI executes one invocation of a fresh command tree with captured
// streams, the way main does it.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func credentialsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "credentials.json")
}

func TestRootCommandTree(t *testing.T) {
	root := Root()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"signup", "signin", "signout", "whoami", "refresh", "items"} {
		assert.Contains(t, names, want)
	}

	items, _, err := root.Find([]string{"items"})
	require.NoError(t, err)

	var sub []string
	for _, c := range items.Commands() {
		sub = append(sub, c.Name())
	}
	for _, want := range []string{"list", "all", "get", "create", "update", "delete", "watch"} {
		assert.Contains(t, sub, want)
	}
}

func TestAPIURLDefaultFromEnv(t *testing.T) {
	t.Setenv(apiURLEnv, "http://inventory.test/api")
	flag := Root().PersistentFlags().Lookup("api-url")
	require.NotNil(t, flag)
	assert.Equal(t, "http://inventory.test/api", flag.DefValue)

	t.Setenv(apiURLEnv, "")
	flag = Root().PersistentFlags().Lookup("api-url")
	require.NotNil(t, flag)
	assert.Equal(t, defaultAPIURL, flag.DefValue)
}

func TestSignInStoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/signin", r.URL.Path)

		var payload struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "alice", payload.Username)
		assert.Equal(t, "secret", payload.Password)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sessionBody))
	}))
	defer srv.Close()

	credsPath := credentialsPath(t)
	out, _, err := runCLI(t, "",
		"signin", "-u", "alice", "-p", "secret",
		"--api-url", srv.URL, "--credentials", credsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as alice (access token valid 15m0s).")

	store, err := credentials.NewFile(credsPath)
	require.NoError(t, err)
	tokens, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-token", tokens.AccessToken)
	assert.Equal(t, "refresh-token", tokens.RefreshToken)
	assert.Equal(t, "id-token", tokens.IDToken)
}

func TestSignInPromptsForPassword(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Password string `json:"password"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		got <- payload.Password

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sessionBody))
	}))
	defer srv.Close()

	out, _, err := runCLI(t, "hunter2\n",
		"signin", "-u", "alice",
		"--api-url", srv.URL, "--credentials", credentialsPath(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Password: ")
	assert.Equal(t, "hunter2", <-got)
}

func TestResolvePasswordRejectsBlank(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("   \n"))
	cmd.SetOut(io.Discard)

	_, err := resolvePassword(cmd, "")
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindDomain))
	assert.Contains(t, err.Error(), "password is required")
}

func TestItemsListRendersTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"itemId":"a1","name":"Desk Lamp","price":25.5,"category":"lighting"},
			{"itemId":"b2","name":"USB Hub","price":14.39,"category":"electronics"}
		]`))
	}))
	defer srv.Close()

	out, _, err := runCLI(t, "",
		"items", "list", "--api-url", srv.URL, "--credentials", credentialsPath(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Desk Lamp")
	assert.Contains(t, out, "USB Hub")
	assert.Contains(t, out, "2 item(s), total value 39.89")
}

func TestItemsUpdateMergesChangedFlags(t *testing.T) {
	putBody := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/a1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"itemId":"a1","name":"Desk Lamp","price":25.5,"category":"lighting"}`))
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			putBody <- body
			_, _ = w.Write([]byte(`{"itemId":"a1","name":"Desk Lamp","price":30,"category":"lighting"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	out, _, err := runCLI(t, "",
		"items", "update", "a1", "--price", "30",
		"--api-url", srv.URL, "--credentials", credentialsPath(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Updated item a1.")

	var sent client.Item
	require.NoError(t, json.Unmarshal(<-putBody, &sent))
	assert.Equal(t, "Desk Lamp", sent.Name, "unset flags keep the fetched value")
	assert.Equal(t, 30.0, sent.Price)
	assert.Equal(t, "lighting", sent.Category)
}

func TestUnauthorizedPrintsHintOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","message":"token expired"}`))
	}))
	defer srv.Close()

	credsPath := credentialsPath(t)
	store, err := credentials.NewFile(credsPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(credentials.Tokens{
		AccessToken:  "stale-access",
		RefreshToken: "stale-refresh",
		IDToken:      "stale-id",
	}))

	out, errOut, err := runCLI(t, "",
		"whoami", "--api-url", srv.URL, "--credentials", credsPath)
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "unauthorized", apiErr.Code)

	assert.Equal(t, 1, strings.Count(errOut, "Session expired or revoked."))
	assert.Empty(t, out, "stdout stays clean on failure")

	tokens, err := store.Load()
	require.NoError(t, err)
	assert.True(t, tokens.Empty(), "rejected token clears the stored session")
}

func TestItemsCreateRequiresName(t *testing.T) {
	_, _, err := runCLI(t, "", "items", "create", "--price", "9.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}
