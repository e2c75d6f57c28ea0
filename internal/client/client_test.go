package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-server-go/internal/client"
	"inventory-server-go/internal/client/credentials"
	platformerrors "inventory-server-go/internal/platform/errors"
)

// recorder captures requests so tests can assert on what actually went
// over the wire.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	Method        string
	Path          string
	Authorization []string
	Body          []byte
}

func (r *recorder) record(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{
		Method:        req.Method,
		Path:          req.URL.Path,
		Authorization: req.Header.Values("Authorization"),
		Body:          body,
	})
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) last() recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

type fixture struct {
	server      *httptest.Server
	store       *credentials.Memory
	client      *client.Client
	recorder    *recorder
	invalidated atomic.Int32
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	f := &fixture{store: credentials.NewMemory(), recorder: &recorder{}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.recorder.record(r)
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)

	c, err := client.New(client.Config{
		BaseURL:              f.server.URL,
		HTTPClient:           f.server.Client(),
		Credentials:          f.store,
		OnSessionInvalidated: func() { f.invalidated.Add(1) },
	})
	require.NoError(t, err)
	f.client = c
	return f
}

func (f *fixture) storeTokens(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.Save(credentials.Tokens{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		IDToken:      "identity-token",
	}))
}

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func unauthorizedHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusUnauthorized, `{"error":"unauthorized","message":"invalid or expired token"}`)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := client.New(client.Config{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindConfig))
}

func TestAuthorizationHeaderComesFromStore(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `{"itemId":"a1","name":"x","price":1}`)
	})
	ctx := context.Background()

	// No stored token: the header must be absent entirely.
	_, err := f.client.GetItem(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, f.recorder.last().Authorization)

	// Access token wins.
	f.storeTokens(t)
	_, err = f.client.GetItem(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer access-token"}, f.recorder.last().Authorization)

	// Identity token is the fallback when no access token is stored.
	require.NoError(t, f.store.Save(credentials.Tokens{IDToken: "identity-token"}))
	_, err = f.client.GetItem(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer identity-token"}, f.recorder.last().Authorization)
}

func TestUnauthorizedClearsCredentials(t *testing.T) {
	f := newFixture(t, unauthorizedHandler)
	f.storeTokens(t)

	_, err := f.client.GetItem(context.Background(), "a1")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr, "a 401 must still surface to the caller")
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "unauthorized", apiErr.Code)

	tokens, loadErr := f.store.Load()
	require.NoError(t, loadErr)
	assert.True(t, tokens.Empty(), "all three credentials must be gone")
	assert.Equal(t, int32(1), f.invalidated.Load())
}

func TestConcurrentUnauthorizedNotifiesOnce(t *testing.T) {
	f := newFixture(t, unauthorizedHandler)
	f.storeTokens(t)

	const calls = 12
	var wg sync.WaitGroup
	errs := make(chan error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.client.GetItem(context.Background(), "a1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	}

	tokens, err := f.store.Load()
	require.NoError(t, err)
	assert.True(t, tokens.Empty())
	assert.Equal(t, int32(1), f.invalidated.Load(), "callback must fire exactly once per session")
}

func TestGetItemDecodesServerObject(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `{
			"itemId": "b7f1c2d0",
			"name": "Laptop Stand",
			"price": 49.5,
			"category": "desk",
			"createdAt": "2026-08-01T10:00:00Z",
			"updatedAt": "2026-08-02T11:30:00Z"
		}`)
	})

	item, err := f.client.GetItem(context.Background(), "b7f1c2d0")
	require.NoError(t, err)
	assert.Equal(t, client.Item{
		ItemID:   "b7f1c2d0",
		Name:     "Laptop Stand",
		Price:    49.5,
		Category: "desk",
	}, item, "payload fields must survive the round trip; extra fields are ignored")
}

func TestDeleteItemSingleRequestNoPayload(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `null`)
	})

	require.NoError(t, f.client.DeleteItem(context.Background(), "b7f1c2d0"))

	require.Equal(t, 1, f.recorder.count(), "delete is exactly one request")
	last := f.recorder.last()
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Equal(t, "/items/b7f1c2d0", last.Path)
	assert.Empty(t, last.Body)
}

func TestBlankItemIDFailsWithoutRequest(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `{}`)
	})
	ctx := context.Background()

	_, err := f.client.GetItem(ctx, "   ")
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindDomain))

	_, err = f.client.UpdateItem(ctx, "", client.Item{Name: "x"})
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindDomain))

	err = f.client.DeleteItem(ctx, "")
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindDomain))

	assert.Zero(t, f.recorder.count(), "no request may leave the client")
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {})
	f.server.Close()

	_, err := f.client.ListItems(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	assert.False(t, errors.As(err, &apiErr), "connection failures are transport errors")
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindTransport))
}

func TestNonEnvelopeErrorBody(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>Bad Gateway</html>")
	})

	_, err := f.client.GetAllItems(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "unexpected_response", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Bad Gateway")
}

func TestCreateItemSendsPayload(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `{"itemId":"new-id","name":"Desk Lamp","price":19.9,"category":"office"}`)
	})

	created, err := f.client.CreateItem(context.Background(), client.Item{
		Name: "Desk Lamp", Price: 19.9, Category: "office",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ItemID)

	last := f.recorder.last()
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "/items", last.Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(last.Body, &sent))
	assert.Equal(t, "Desk Lamp", sent["name"])
	assert.NotContains(t, sent, "itemId", "unset id must stay out of the payload")
}

const sessionBody = `{
	"accessToken": "new-access",
	"refreshToken": "new-refresh",
	"idToken": "new-identity",
	"tokenType": "Bearer",
	"expiresIn": 900
}`

func TestSignInStoresTriple(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, sessionBody)
	})

	session, err := f.client.SignIn(context.Background(), "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(900), session.ExpiresIn)

	tokens, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, credentials.Tokens{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		IDToken:      "new-identity",
	}, tokens)
}

func TestSignUpStoresSession(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, sessionBody)
	})

	_, err := f.client.SignUp(context.Background(), "alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	last := f.recorder.last()
	assert.Equal(t, "/auth/signup", last.Path)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(last.Body, &sent))
	assert.Equal(t, "alice@example.com", sent["email"])

	tokens, err := f.store.Load()
	require.NoError(t, err)
	assert.False(t, tokens.Empty(), "signup signs the account in")
}

func TestRefreshSessionRotatesStoredTriple(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, sessionBody)
	})
	f.storeTokens(t)

	_, err := f.client.RefreshSession(context.Background())
	require.NoError(t, err)

	last := f.recorder.last()
	assert.Equal(t, "/auth/refresh", last.Path)
	assert.JSONEq(t, `{"refreshToken":"refresh-token"}`, string(last.Body))

	tokens, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", tokens.RefreshToken)
}

func TestRefreshSessionWithoutStoredToken(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, sessionBody)
	})

	_, err := f.client.RefreshSession(context.Background())
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindAuth))
	assert.Zero(t, f.recorder.count())
}

func TestSignOutClearsEvenWhenServerFails(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusInternalServerError, `{"error":"internal_error","message":"internal server error"}`)
	})
	f.storeTokens(t)

	err := f.client.SignOut(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	tokens, loadErr := f.store.Load()
	require.NoError(t, loadErr)
	assert.True(t, tokens.Empty(), "local credentials go away regardless of the server")
}

func TestSignOutWithoutSessionSkipsServer(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `null`)
	})

	require.NoError(t, f.client.SignOut(context.Background()))
	assert.Zero(t, f.recorder.count())
}

func TestWhoAmIDecodesAccount(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, `{"id":7,"username":"alice","email":"alice@example.com","createdAt":"2026-08-01T10:00:00Z"}`)
	})
	f.storeTokens(t)

	account, err := f.client.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, client.Account{ID: 7, Username: "alice", Email: "alice@example.com"}, account)
}
