package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fwojciec/socialarchive"
	main "github.com/fwojciec/socialarchive/cmd/socialarchive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string, perm os.FileMode) string {
	t.Helper()

	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

// fakeTool writes a pdftotext stand-in that prints a fixed text.
func fakeTool(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	return writeFile(t, t.TempDir(), "pdftotext", "#!/bin/sh\necho 'Tenta 2019'\n", 0755)
}

// sourceTree writes one course whose page is relevant only through its PDF.
// Nothing in the body or the link names a keyword.
func sourceTree(t *testing.T) string {
	t.Helper()

	src := t.TempDir()
	writeFile(t, src, "A/AB1234/00-info.json", `{"code": "AB1234", "name": {"sv": "Kurs"}}`, 0644)
	writeFile(t, src, "A/AB1234/00-pages.json", `[{
		"slug": "week1",
		"created_time": "2019-01-01T10:00:00",
		"last_modified": {"time": "2019-01-02T10:00:00"},
		"links": [{"url": "/social/upload/Old+Notes.pdf", "created_time": "2019-01-01T11:00:00"}],
		"roundgroup": null
	}]`, 0644)
	writeFile(t, src, "A/AB1234/week1.html", `<p>Welcome</p><a href="/social/upload/Old+Notes.pdf">pdf</a>`, 0644)
	writeFile(t, src, "A/AB1234/01-files/Old%20Notes.pdf", "%PDF-1.4", 0644)
	return src
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "socialarchive")
	assert.Contains(t, stdout.String(), "--isolate")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_RequiresExistingSource(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing")

	err := m.Run(context.Background(), []string{missing, filepath.Join(t.TempDir(), "out")}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_Archive(t *testing.T) {
	t.Parallel()

	t.Run("writes the package and prints a summary", func(t *testing.T) {
		t.Parallel()

		src := sourceTree(t)
		out := filepath.Join(t.TempDir(), "delivery")
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--pdftotext", fakeTool(t), "--summary", src, out}, &stdout, &stderr)

		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(out, "social.xml"))
		assert.FileExists(t, filepath.Join(out, "A/AB1234/old-notes.pdf"))
		body, err := os.ReadFile(filepath.Join(out, "A/AB1234/week1.html"))
		require.NoError(t, err)
		assert.Contains(t, string(body), `href="old-notes.pdf"`)
		assert.NoDirExists(t, out+".tmp")

		assert.Contains(t, stdout.String(), "A/AB1234")
		assert.Contains(t, stdout.String(), "archived")
		assert.Contains(t, stderr.String(), "run=")
	})

	t.Run("fails before the run without the extraction tool", func(t *testing.T) {
		t.Parallel()

		src := sourceTree(t)
		out := filepath.Join(t.TempDir(), "delivery")
		m := main.NewMain()
		var stdout, stderr bytes.Buffer
		missing := filepath.Join(t.TempDir(), "no-such-pdftotext")

		err := m.Run(context.Background(), []string{"--pdftotext", missing, src, out}, &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "Hint:")
		assert.NoDirExists(t, out)
	})

	t.Run("rejects an output inside the source", func(t *testing.T) {
		t.Parallel()

		src := sourceTree(t)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--pdftotext", fakeTool(t), src, filepath.Join(src, "out")}, &stdout, &stderr)

		assert.Equal(t, socialarchive.EINVALID, socialarchive.ErrorCode(err))
	})

	t.Run("reads settings from a config file", func(t *testing.T) {
		t.Parallel()

		src := sourceTree(t)
		out := filepath.Join(t.TempDir(), "delivery")
		cfg := writeFile(t, t.TempDir(), "socialarchive.toml", `
jobs = 1

[extract]
binary = "`+fakeTool(t)+`"

[log]
format = "json"
`, 0644)
		m := main.NewMain()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--config", cfg, src, out}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), `"msg":"archive finished"`)
		assert.Contains(t, stderr.String(), `"run":`)
	})

	t.Run("reuses cached extractions across runs", func(t *testing.T) {
		t.Parallel()

		src := sourceTree(t)
		tool := fakeTool(t)
		dir := t.TempDir()
		cache := filepath.Join(dir, "cache", "extract.db")

		var first bytes.Buffer
		err := main.NewMain().Run(context.Background(),
			[]string{"--pdftotext", tool, "--cache", cache, "--summary", src, filepath.Join(dir, "one")}, &first, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, first.String(), "0 hits, 1 misses")

		var second bytes.Buffer
		err = main.NewMain().Run(context.Background(),
			[]string{"--pdftotext", tool, "--cache", cache, "--summary", src, filepath.Join(dir, "two")}, &second, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, second.String(), "1 hits, 0 misses")
	})
}

func TestMain_Run_ExtractTimeout(t *testing.T) {
	t.Parallel()

	t.Run("rounds a sub-second timeout up to a bound", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" {
			t.Skip("shell scripts not supported")
		}
		tool := writeFile(t, t.TempDir(), "pdftotext", "#!/bin/sh\nsleep 3\necho 'Tenta 2019'\n", 0755)
		src := sourceTree(t)
		out := filepath.Join(t.TempDir(), "delivery")
		var stdout, stderr bytes.Buffer

		err := main.NewMain().Run(context.Background(),
			[]string{"--pdftotext", tool, "--extract-timeout", "400ms", src, out}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "timed out after 1s")
		assert.NoDirExists(t, filepath.Join(out, "A", "AB1234"))
	})

	t.Run("rejects a negative timeout flag", func(t *testing.T) {
		t.Parallel()

		src := sourceTree(t)
		var stdout, stderr bytes.Buffer

		err := main.NewMain().Run(context.Background(),
			[]string{"--extract-timeout=-1s", src, filepath.Join(t.TempDir(), "out")}, &stdout, &stderr)

		assert.Equal(t, socialarchive.EINVALID, socialarchive.ErrorCode(err))
	})

	t.Run("rejects a zero timeout in the config file", func(t *testing.T) {
		t.Parallel()

		src := sourceTree(t)
		cfg := writeFile(t, t.TempDir(), "socialarchive.toml", "[extract]\ntimeout_seconds = 0\n", 0644)
		var stdout, stderr bytes.Buffer

		err := main.NewMain().Run(context.Background(),
			[]string{"--config", cfg, src, filepath.Join(t.TempDir(), "out")}, &stdout, &stderr)

		assert.Equal(t, socialarchive.EINVALID, socialarchive.ErrorCode(err))
	})
}

func TestMain_Run_ConfigFromEnvironment(t *testing.T) {
	src := sourceTree(t)
	cfg := writeFile(t, t.TempDir(), "socialarchive.toml", "[log]\nformat = \"yaml\"\n", 0644)
	t.Setenv("SOCIALARCHIVE_CONFIG", cfg)
	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{src, filepath.Join(t.TempDir(), "out")}, &stdout, &stderr)

	assert.Equal(t, socialarchive.EINVALID, socialarchive.ErrorCode(err))
}
