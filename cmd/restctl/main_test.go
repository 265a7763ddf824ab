package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/search", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"q": c.Query("q")})
	})
	r.PUT("/docs/1", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, gin.H{
			"content_type": c.GetHeader("Content-Type"),
			"body":         string(body),
		})
	})
	r.GET("/text", func(c *gin.Context) {
		c.String(http.StatusBadRequest, "nope")
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseParams(t *testing.T) {
	set, err := parseParams([]string{"q=go lang", "empty=", "eq=a=b"})
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, "eq", set.Pairs()[2].Name)
	assert.Equal(t, "a=b", set.Pairs()[2].Value)

	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)

	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestReadData(t *testing.T) {
	body, err := readData("literal")
	require.NoError(t, err)
	assert.Equal(t, []byte("literal"), body)

	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o600))
	body, err = readData("@" + path)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), body)

	_, err = readData("@" + filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRunJSON(t *testing.T) {
	srv := newServer(t)

	stdout, stderr, err := execute(t, "--base-url", srv.URL, "--param", "q=go", "/search")
	require.NoError(t, err)
	assert.JSONEq(t, `{"q":"go"}`, stdout)
	assert.Contains(t, stderr, "HTTP 200")
}

func TestRunData(t *testing.T) {
	srv := newServer(t)

	stdout, _, err := execute(t,
		"--base-url", srv.URL,
		"-X", "PUT",
		"--data", "hello",
		"--content-type", "text/plain",
		"/docs/1",
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content_type":"text/plain","body":"hello"}`, stdout)
}

func TestRunParsingError(t *testing.T) {
	srv := newServer(t)

	_, stderr, err := execute(t, "--base-url", srv.URL, "/text")
	require.Error(t, err)
	assert.ErrorIs(t, err, errParsing)
	assert.Contains(t, stderr, "HTTP 400")
}

func TestRunRaw(t *testing.T) {
	srv := newServer(t)

	stdout, stderr, err := execute(t, "--base-url", srv.URL, "--raw", "/text")
	require.NoError(t, err)
	assert.Equal(t, "nope\n", stdout)
	assert.Contains(t, stderr, "HTTP 400")
}

func TestRunNetworkError(t *testing.T) {
	srv := newServer(t)
	url := srv.URL
	srv.Close()

	_, _, err := execute(t, "--base-url", url, "--timeout", "2s", "/search")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNetwork)
}

func TestRunVerbose(t *testing.T) {
	srv := newServer(t)

	_, stderr, err := execute(t, "--base-url", srv.URL, "-v", "/search")
	require.NoError(t, err)
	assert.Contains(t, stderr, "* begin")
	assert.Contains(t, stderr, "* success")
	assert.Contains(t, stderr, "1 request(s)")
}

func TestRunInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "--base-url", "ftp://example.com", "/x")
	assert.Error(t, err)

	_, _, err = execute(t)
	assert.Error(t, err)
}
