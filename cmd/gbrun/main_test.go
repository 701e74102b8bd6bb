package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func records(t *testing.T, out *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var recs []map[string]interface{}
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		recs = append(recs, rec)
	}
	return recs
}

func TestRunPages(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a/contact.html", `<html><body><script>gbTel("123")</script></body></html>`)
	writePage(t, dir, "b/deep/section.js", `gbGoToSection("9")`)
	writePage(t, dir, "notes.txt", `ignored`)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-json", filepath.Join(dir, "**/*.{html,js}")}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	recs := records(t, &stdout)
	require.Len(t, recs, 2)
	assert.Equal(t, "tel:123", recs[0]["location"])
	assert.Equal(t, "goodbarber://gotosection?id=9", recs[1]["location"])
}

func TestRunFailingPage(t *testing.T) {
	dir := t.TempDir()
	page := writePage(t, dir, "broken.js", `throw new Error("nope")`)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-json", page}, &stdout, &stderr)
	assert.Equal(t, exitFailed, code)

	recs := records(t, &stdout)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0]["error"], "nope")
}

func TestRunWithFixtures(t *testing.T) {
	dir := t.TempDir()
	fixtures := writePage(t, dir, "device.yaml", "preferences:\n  lang: fr\n")
	page := writePage(t, dir, "prefs.js", `
		function gbDidSuccessGetPreference(key, value) { console.log(value); }
		gbGetPreference("lang");
	`)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-json", "-fixtures", fixtures, page}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	recs := records(t, &stdout)
	require.Len(t, recs, 1)
	console := recs[0]["console"].([]interface{})
	require.Len(t, console, 1)
	assert.Equal(t, "fr", console[0].(map[string]interface{})["message"])
}

func TestRunUsageErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"no patterns", nil},
		{"bad debug mode", []string{"-debug-mode", "loud", "x.js"}},
		{"no matches", []string{filepath.Join(dir, "*.html")}},
		{"missing fixtures", []string{"-fixtures", filepath.Join(dir, "none.yaml"), writePage(t, dir, "p.js", "1")}},
		{"unknown flag", []string{"-loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, exitUsage, run(tt.args, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestExpandDeduplicates(t *testing.T) {
	dir := t.TempDir()
	page := writePage(t, dir, "index.html", "<html></html>")

	pages, err := expand([]string{page, filepath.Join(dir, "*.html")})
	require.NoError(t, err)
	assert.Equal(t, []string{page}, pages)
}
