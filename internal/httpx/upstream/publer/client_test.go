package publer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWorkspaceMemoized(t *testing.T) {
	stub := newStubProvider(t)
	client := stub.client()

	id, err := client.ResolveWorkspace(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ws-1", id)

	// Second resolution must hit the cache, not the API.
	id, err = client.ResolveWorkspace(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ws-1", id)

	workspaces, _, _, _, _ := stub.counts()
	assert.Equal(t, 1, workspaces)
}

func TestResolveWorkspaceEmptyList(t *testing.T) {
	stub := newStubProvider(t)
	stub.workspaces = nil
	client := stub.client()

	_, err := client.ResolveWorkspace(context.Background())
	require.ErrorIs(t, err, ErrNoWorkspace)
}

func TestAccountsScopedToWorkspace(t *testing.T) {
	stub := newStubProvider(t)
	stub.accounts = []Account{
		{ID: "acc1", Name: "Brand IG", Type: "ig_business"},
	}
	client := stub.client()

	// Workspace header checks live in the stub; a fresh client must
	// resolve the workspace on its own before the accounts call.
	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, NetworkInstagram, accounts[0].Network())

	workspaces, accountCalls, _, _, _ := stub.counts()
	assert.Equal(t, 1, workspaces)
	assert.Equal(t, 1, accountCalls)
}

func TestDoReturnsAPIErrorOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	client := New("bad-key", WithBaseURL(srv.URL))

	_, err := client.ResolveWorkspace(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "/workspaces", apiErr.Endpoint)
	assert.Contains(t, apiErr.Body, "invalid api key")
}
