package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/aretw0/formstate/pkg/schema"
	"github.com/aretw0/formstate/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	loader, err := memory.NewFromSchemas(
		schema.Object(
			schema.Field("name", schema.String().Min(1)),
			schema.Field("age", schema.Int().Min(18)),
		).Named("signup"),
	)
	require.NoError(t, err)

	store := memory.NewStore()
	return NewServer(loader, WithSessions(session.NewManager(store))), store
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return content.Text
}

func TestServer_Schemas(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleListSchemas(ctx, toolRequest(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["signup"]`, text(t, res))

	res, err = s.handleDescribeSchema(ctx, toolRequest(map[string]any{"schema": "signup"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"name":"age"`)

	res, err = s.handleDescribeSchema(ctx, toolRequest(map[string]any{"schema": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_FillAcrossCalls(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()
	form := FormArgs{Schema: "signup", Key: "agent-1"}

	resp, err := s.handleChangeField(ctx, toolRequest(nil), ChangeArgs{FormArgs: form, Name: "age", Value: "16abc", Type: "number"})
	require.NoError(t, err)
	require.NotNil(t, resp.Diff)
	assert.Contains(t, resp.Diff.Fields, "age")

	// Each call resumes what the previous one saved.
	resp, err = s.handleGetForm(ctx, toolRequest(nil), form)
	require.NoError(t, err)
	age, _ := resp.State.Get("age")
	assert.True(t, age.Value.Equal(domain.Number(16)))

	resp, err = s.handleValidateForm(ctx, toolRequest(nil), ValidateArgs{FormArgs: form})
	require.NoError(t, err)
	require.NotNil(t, resp.Valid)
	assert.False(t, *resp.Valid)
	assert.Equal(t, map[string]string{
		"name": "String must contain at least 1 character(s)",
		"age":  "Number must be greater than or equal to 18",
	}, resp.State.Errors())

	_, err = s.handleChangeField(ctx, toolRequest(nil), ChangeArgs{FormArgs: form, Name: "name", Value: "Ada"})
	require.NoError(t, err)
	_, err = s.handleChangeField(ctx, toolRequest(nil), ChangeArgs{FormArgs: form, Name: "age", Value: "36", Type: "number"})
	require.NoError(t, err)

	resp, err = s.handleValidateForm(ctx, toolRequest(nil), ValidateArgs{FormArgs: form})
	require.NoError(t, err)
	assert.True(t, *resp.Valid)
	assert.Equal(t, "Ada", resp.Result["name"])
	assert.EqualValues(t, 36, resp.Result["age"])

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"agent-1"}, keys)

	res, err := s.handleDiscardForm(ctx, toolRequest(map[string]any{"key": "agent-1"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	keys, _ = store.List(ctx)
	assert.Empty(t, keys)
}

func TestServer_StepValidationAndReset(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	form := FormArgs{Schema: "signup", Key: "agent-2"}

	resp, err := s.handleValidateForm(ctx, toolRequest(nil), ValidateArgs{FormArgs: form, Fields: "name"})
	require.NoError(t, err)
	assert.False(t, *resp.Valid)
	assert.Equal(t, map[string]string{"name": "String must contain at least 1 character(s)"}, resp.State.Errors())

	_, err = s.handleValidateForm(ctx, toolRequest(nil), ValidateArgs{FormArgs: form, Fields: "name, nope"})
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	resp, err = s.handleResetForm(ctx, toolRequest(nil), form)
	require.NoError(t, err)
	assert.Empty(t, resp.State.Errors())
}

func TestServer_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleGetForm(ctx, toolRequest(nil), FormArgs{Schema: "signup"})
	assert.ErrorIs(t, err, domain.ErrMissingKey)

	_, err = s.handleGetForm(ctx, toolRequest(nil), FormArgs{Schema: "nope", Key: "k"})
	assert.Error(t, err)

	_, err = s.handleChangeField(ctx, toolRequest(nil), ChangeArgs{FormArgs: FormArgs{Schema: "signup", Key: "k"}, Name: "nope", Value: "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}
