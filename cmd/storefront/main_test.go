package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cliEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STOREFRONT_AUTH_EPHEMERAL_KEY", "true")
	t.Setenv("STOREFRONT_DATABASE_URL", "")
	t.Setenv("STOREFRONT_REDIS_URL", "")
	t.Setenv("STOREFRONT_SESSION_STORE", "memory")
	t.Setenv("STOREFRONT_LAYOUTS_FILE", "")
	t.Setenv("STOREFRONT_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("STOREFRONT_ARGON2_ITERATIONS", "1")
	t.Setenv("STOREFRONT_ARGON2_PARALLELISM", "1")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutesCommand(t *testing.T) {
	cliEnv(t)

	out, err := run(t, "routes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "PATTERN"))
	assert.Contains(t, out, "/account/orders")
	assert.Contains(t, out, "page-header x1, card-list x3")
	assert.Contains(t, out, "categories-grid x10")
}

func TestSessionIssueCommand(t *testing.T) {
	cliEnv(t)

	out, err := run(t, "session", "issue", "--user", "u123", "--platform", "ios")
	require.NoError(t, err)

	var got issuedOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "u123", got.UserID)
	assert.Equal(t, "memory", got.Store)
	assert.NotEmpty(t, got.SessionID)
	assert.NotEmpty(t, got.AccessToken)
	assert.NotEmpty(t, got.SessionToken)
	assert.True(t, got.ExpiresAt.After(got.AccessExp) || got.ExpiresAt.Equal(got.AccessExp))

	_, err = run(t, "session", "issue")
	assert.ErrorContains(t, err, "--user is required")
}

func TestAccountCreateCommand(t *testing.T) {
	cliEnv(t)

	out, err := run(t, "account", "create", "--email", "Ops@Example.com", "--password", "a long enough password", "--admin")
	require.NoError(t, err)
	assert.Contains(t, out, "ops@example.com")
	assert.Contains(t, out, "admin=true")

	_, err = run(t, "account", "create", "--email", "x@example.com")
	assert.Error(t, err)
}
