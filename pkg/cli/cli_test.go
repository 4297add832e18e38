package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes a subcommand against a stub server and captures stdout.
func runCommand(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--host", srv.URL))
	err := root.Execute()
	return out.String(), err
}

func TestQueryCommand_Table(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "select 1", req["sql"])
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"columns":   []string{"n"},
			"rows":      [][]interface{}{{1}},
			"row_count": 1,
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "query", "select 1")
	require.NoError(t, err)
	assert.Contains(t, out, "n")
	assert.Contains(t, out, "(1 rows)")
}

func TestUploadCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload", r.URL.Path)
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "tiny.csv", header.Filename)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"display_name": "tiny.csv",
			"storage_key":  "abc_tiny.csv",
			"rows":         2,
		})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "tiny.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n3,4\n"), 0o600))

	out, err := runCommand(t, srv, "upload", path)
	require.NoError(t, err)
	assert.Contains(t, out, "uploaded tiny.csv (2 rows, key abc_tiny.csv)")
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "query failed: Parser Error"})
	}))
	defer srv.Close()

	_, err := runCommand(t, srv, "query", "selec")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Parser Error")
}

func TestReconcileCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/reconcile", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"records_removed": 2,
			"blobs_embedded":  1,
			"failures":        0,
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 2 records, embedded 1 blobs, 0 failures")
}

func TestZeroArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "export needs sql", args: []string{"export"}},
		{name: "search needs question", args: []string{"search"}},
		{name: "upload needs file", args: []string{"upload"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetOut(new(bytes.Buffer))
			root.SetErr(new(bytes.Buffer))
			root.SetArgs(tt.args)
			assert.Error(t, root.Execute())
		})
	}
}
