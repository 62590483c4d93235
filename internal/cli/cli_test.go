package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/aretw0/formstate/pkg/domain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signupYAML = `name: signup
fields:
  - name: name
    type: string
    min: 1
  - name: age
    type: int
    min: 18
`

const contactOpenAPI = `openapi: 3.0.3
info:
  title: contacts
  version: "1"
paths: {}
components:
  schemas:
    Contact:
      type: object
      required: [email]
      properties:
        email:
          type: string
          format: email
        phone:
          type: string
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type buffers struct {
	out, err bytes.Buffer
}

func (b *buffers) io(in string) IO {
	return IO{In: strings.NewReader(in), Out: &b.out, Err: &b.err}
}

func fileOptions(t *testing.T) Options {
	return Options{Store: StoreFile, StoreDir: filepath.Join(t.TempDir(), "snapshots")}
}

func TestLoadSchema(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := LoadSchema(ctx, writeFile(t, dir, "signup.yaml", signupYAML), "")
	require.NoError(t, err)
	assert.Equal(t, "signup", s.Name())
	assert.Equal(t, []string{"name", "age"}, s.Names())

	unnamed := strings.Replace(signupYAML, "name: signup\n", "", 1)
	s, err = LoadSchema(ctx, writeFile(t, dir, "plain.yml", unnamed), "")
	require.NoError(t, err)
	assert.Equal(t, "plain", s.Name())

	api := writeFile(t, dir, "contacts.yaml", contactOpenAPI)
	s, err = LoadSchema(ctx, api, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "phone"}, s.Names())

	_, err = LoadSchema(ctx, api, "Missing")
	assert.Error(t, err)

	_, err = LoadSchema(ctx, filepath.Join(dir, "signup.yaml"), "Contact")
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "signup.yaml", signupYAML)
	writeFile(t, dir, "contacts.yaml", contactOpenAPI)
	writeFile(t, dir, "README.md", "# not a schema")

	loader, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)

	names, _ := loader.ListSchemas()
	assert.Equal(t, []string{"Contact", "signup"}, names)

	writeFile(t, dir, "again.json", `{"name": "signup", "fields": [{"name": "x", "type": "string"}]}`)
	_, err = LoadDir(context.Background(), dir)
	assert.ErrorContains(t, err, "defined in both")
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cases := []Options{
		{Store: StoreMemory},
		{Store: StoreFile, StoreDir: t.TempDir()},
		{Store: StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "forms.db")},
		{Store: StoreRedis, RedisAddr: mr.Addr()},
	}
	for _, opts := range cases {
		t.Run(opts.Store, func(t *testing.T) {
			sessions, closeFn, err := OpenSessions(ctx, opts, logging.NewNop())
			require.NoError(t, err)
			defer closeFn()

			state := domain.NewFormState(domain.NamedField{Name: "name", FieldState: domain.FieldState{
				Value:  domain.Text("Ada"),
				Config: domain.FieldConfig{Type: domain.TypeText},
			}})
			require.NoError(t, sessions.Save(ctx, "k", domain.NewSnapshot("k", state)))

			snap, err := sessions.Load(ctx, "k")
			require.NoError(t, err)
			assert.True(t, snap.Fields.Equal(state))
		})
	}

	_, _, err := OpenSessions(ctx, Options{Store: "etcd"}, logging.NewNop())
	assert.ErrorContains(t, err, "unknown store")

	_, _, err = OpenSessions(ctx, Options{Store: StoreMemory, EncryptionKey: "abcd"}, logging.NewNop())
	assert.ErrorContains(t, err, "64 hex characters")
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ref := SchemaRef{Path: writeFile(t, dir, "signup.yaml", signupYAML)}

	var b buffers
	err := Validate(ctx, Options{}, ref, writeFile(t, dir, "bad.yaml", "name: \"\"\nage: 10\nextra: true\n"), b.io(""))
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
	assert.Equal(t,
		"✗ name: String must contain at least 1 character(s)\n✗ age: Number must be greater than or equal to 18\n",
		b.out.String())

	b = buffers{}
	err = Validate(ctx, Options{}, ref, writeFile(t, dir, "good.json", `{"name": "Ada", "age": "36"}`), b.io(""))
	require.NoError(t, err)
	assert.Equal(t, "✓ valid\n", b.out.String())
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	ref := SchemaRef{Path: writeFile(t, t.TempDir(), "signup.yaml", signupYAML)}

	var b buffers
	require.NoError(t, Inspect(ctx, Options{}, ref, "", false, b.io("")))
	assert.Contains(t, b.out.String(), "## signup")
	assert.Contains(t, b.out.String(), "| age | number | 0 |  |")

	b = buffers{}
	require.NoError(t, Inspect(ctx, Options{}, ref, "", true, b.io("")))
	var state domain.FormState
	require.NoError(t, json.Unmarshal(b.out.Bytes(), &state))
	assert.Equal(t, []string{"name", "age"}, state.Names())
}

func TestFill(t *testing.T) {
	ctx := context.Background()
	ref := SchemaRef{Path: writeFile(t, t.TempDir(), "signup.yaml", signupYAML)}

	var b buffers
	require.NoError(t, Fill(ctx, Options{}, ref, FillOptions{}, b.io("\n30\nAda\n")))

	var result map[string]any
	require.NoError(t, json.Unmarshal(b.out.Bytes(), &result))
	assert.Equal(t, "Ada", result["name"])
	assert.EqualValues(t, 30, result["age"])
	assert.Contains(t, b.err.String(), "String must contain at least 1 character(s)")
}

func TestFill_ResumeAndSnapshots(t *testing.T) {
	ctx := context.Background()
	opts := fileOptions(t)
	ref := SchemaRef{Path: writeFile(t, t.TempDir(), "signup.yaml", signupYAML)}

	var b buffers
	require.NoError(t, Fill(ctx, opts, ref, FillOptions{Key: "s1"}, b.io("Ada\n")))
	assert.Contains(t, b.err.String(), "progress saved under 's1'")
	assert.Empty(t, b.out.String())

	b = buffers{}
	require.NoError(t, ListSnapshots(ctx, opts, b.io("")))
	assert.Equal(t, "s1\n", b.out.String())

	b = buffers{}
	require.NoError(t, ShowSnapshot(ctx, opts, "s1", false, b.io("")))
	assert.Contains(t, b.out.String(), `| name | text | "Ada" |  |`)

	// The stored answer is the default, so an empty line keeps it.
	b = buffers{}
	require.NoError(t, Fill(ctx, opts, ref, FillOptions{Key: "s1", Discard: true}, b.io("\n30\n")))
	var result map[string]any
	require.NoError(t, json.Unmarshal(b.out.Bytes(), &result))
	assert.Equal(t, "Ada", result["name"])

	b = buffers{}
	require.NoError(t, ListSnapshots(ctx, opts, b.io("")))
	assert.Empty(t, b.out.String())

	// Removing a missing snapshot is not an error.
	b = buffers{}
	assert.NoError(t, RemoveSnapshot(ctx, opts, "s1", b.io("")))
}

func TestFill_Encrypted(t *testing.T) {
	ctx := context.Background()
	opts := fileOptions(t)
	opts.EncryptionKey = strings.Repeat("ab", 32)
	ref := SchemaRef{Path: writeFile(t, t.TempDir(), "signup.yaml", signupYAML)}

	var b buffers
	require.NoError(t, Fill(ctx, opts, ref, FillOptions{Key: "secret"}, b.io("Grace\n")))

	raw, err := os.ReadFile(filepath.Join(opts.StoreDir, "secret.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Grace")

	b = buffers{}
	require.NoError(t, ShowSnapshot(ctx, opts, "secret", true, b.io("")))
	assert.Contains(t, b.out.String(), "Grace")

	b = buffers{}
	require.NoError(t, RemoveSnapshot(ctx, opts, "secret", b.io("")))
	assert.Contains(t, b.err.String(), "Snapshot 'secret' removed.")
}

func TestFill_Steps(t *testing.T) {
	ctx := context.Background()
	ref := SchemaRef{Path: writeFile(t, t.TempDir(), "signup.yaml", signupYAML)}

	var b buffers
	fo := FillOptions{Steps: []string{"age", "name"}, MaxAttempts: 1}
	err := Fill(ctx, Options{}, ref, fo, b.io("10\n"))

	assert.True(t, IsInvalid(err))
	assert.Empty(t, b.out.String())
}

func TestNewServer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "signup.yaml", signupYAML)

	var b buffers
	srv, closeFn, err := NewServer(ctx, Options{Store: StoreMemory}, ServeOptions{Addr: "127.0.0.1:0", SchemaDir: dir}, b.io(""))
	require.NoError(t, err)
	defer closeFn()

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest("POST", "/forms", strings.NewReader(`{"schema":"signup"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
	assert.Contains(t, w.Body.String(), `formstate_snapshot_operations_total{operation="resumed",result="miss"} 1`)
}

func TestServe_Shutdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "signup.yaml", signupYAML)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var b buffers
	go func() {
		done <- Serve(ctx, Options{Store: StoreMemory}, ServeOptions{Addr: "127.0.0.1:0", SchemaDir: dir}, b.io(""))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewMCPServer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "signup.yaml", signupYAML)

	var b buffers
	srv, closeFn, err := NewMCPServer(ctx, Options{Store: StoreMemory}, MCPOptions{SchemaDir: dir}, b.io(""))
	require.NoError(t, err)
	defer closeFn()
	assert.NotNil(t, srv)

	_, _, err = NewMCPServer(ctx, Options{Store: "nope"}, MCPOptions{SchemaDir: dir}, b.io(""))
	assert.ErrorContains(t, err, "unknown store")
}
