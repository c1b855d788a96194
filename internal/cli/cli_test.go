package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/absfs/tjdecode"
	"github.com/stretchr/testify/require"
)

// testContainerHex is a "tj!" container encoded with the built-in base key
const testContainerHex = "746a21101112131415161718191a1b1c1d1e1fdeadbeef" +
	"fa63a2d907e70124198e736b81ed644c24fd6e786a0f3a1009ce2b8109d37fc0"

const testPlaintext = `{"name":"shinobi","hp":100}`

const zeroKey = "00000000000000000000000000000000"

type result struct {
	stdout, stderr string
	code           int
}

// run executes the tool with an empty configuration file and no key in
// the environment
func run(t *testing.T, args ...string) result {
	t.Helper()
	t.Setenv(tjdecode.DefaultEnvVar, "")

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))
	return runWithConfig(t, cfg, args...)
}

func runWithConfig(t *testing.T, cfg string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), append(args, "--config", cfg), &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func container(t *testing.T, magic string) []byte {
	t.Helper()
	data, err := hex.DecodeString(testContainerHex)
	require.NoError(t, err)
	copy(data, magic)
	return data
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, data, 0o644))
	return name
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.tj"), container(t, "tj!"))
	b := writeFile(t, filepath.Join(dir, "b.png"), container(t, "tje"))
	c := writeFile(t, filepath.Join(dir, "c.txt"), []byte("hello"))
	missing := filepath.Join(dir, "missing")

	res := run(t, "classify", a, b, c, missing)
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t,
		a+"\ttj!\n"+b+"\ttje\n"+c+"\tunknown\n"+missing+"\tunknown\n",
		res.stdout)
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "boss.json"), container(t, "tj!"))

	res := run(t, "decode", src)
	require.Equal(t, 0, res.code, res.stderr)

	out := filepath.Join(dir, "boss.dec.json")
	require.Equal(t, src+" -> "+out+"\n", res.stdout)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, testPlaintext, string(got))
}

func TestDecode_Output(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.tj"), container(t, "tj!"))
	out := filepath.Join(dir, "nested", "plain.json")

	res := run(t, "decode", src, "-o", out)
	require.Equal(t, 0, res.code, res.stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, testPlaintext, string(got))

	res = run(t, "decode", src, src, "-o", out)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "single file")
}

func TestDecode_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "good.tj"), container(t, "tj!"))
	bad := writeFile(t, filepath.Join(dir, "notes.txt"), []byte("plain text file"))

	res := run(t, "decode", bad, good)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, bad+": ")
	require.Contains(t, res.stderr, "check the folder")
	require.Contains(t, res.stdout, good+" -> ")
	require.FileExists(t, filepath.Join(dir, "good.dec.tj"))
}

func TestDecode_WrongKey(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.tj"), container(t, "tj!"))

	res := run(t, "decode", "--base-key", zeroKey, src)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "check the base key")
	require.NoFileExists(t, filepath.Join(dir, "a.dec.tj"))
}

func TestDecode_EnvironmentKey(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.tj"), container(t, "tj!"))
	cfg := writeFile(t, filepath.Join(dir, "config.yaml"), nil)

	t.Setenv(tjdecode.DefaultEnvVar, zeroKey)
	res := runWithConfig(t, cfg, "decode", src)
	require.Equal(t, 1, res.code)

	// The flag beats the environment
	res = runWithConfig(t, cfg, "decode", "-k", tjdecode.DefaultBaseKeyHex, src)
	require.Equal(t, 0, res.code, res.stderr)
}

func TestDecode_ProfileFallback(t *testing.T) {
	t.Setenv(tjdecode.DefaultEnvVar, "")
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.tj"), container(t, "tj!"))
	cfg := writeFile(t, filepath.Join(dir, "config.yaml"), []byte(`
profile: beta
profiles:
  - name: beta
    base_key: "`+zeroKey+`"
`))

	res := runWithConfig(t, cfg, "decode", src)
	require.Equal(t, 1, res.code)

	require.NoError(t, os.WriteFile(cfg, []byte(`
profile: beta
fallback: true
profiles:
  - name: beta
    base_key: "`+zeroKey+`"
`), 0o644))
	res = runWithConfig(t, cfg, "decode", src)
	require.Equal(t, 0, res.code, res.stderr)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, filepath.Join(root, "data", "a.tj"), container(t, "tj!"))
	b := writeFile(t, filepath.Join(root, "data", "b.png"), container(t, "tje"))
	z := writeFile(t, filepath.Join(root, "data", "c.ogg"), container(t, "tjz"))
	writeFile(t, filepath.Join(root, "cache", "d.tj"), container(t, "tj!"))
	writeFile(t, filepath.Join(root, "readme.txt"), []byte("hi"))

	res := run(t, "scan", root, "--exclude", "cache")
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, a+"\n"+b+"\n", res.stdout)

	res = run(t, "scan", root, "--variants", "tjz")
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, z+"\n", res.stdout)

	res = run(t, "scan", root, "--variants", "")
	require.Equal(t, 0, res.code, res.stderr)
	require.Empty(t, res.stdout)

	res = run(t, "scan", root, "--variants", "tjx")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "unknown variant")
}

func TestBatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "scripts", "a.tj"), container(t, "tj!"))
	writeFile(t, filepath.Join(root, "images", "b.png"), container(t, "tje"))
	writeFile(t, filepath.Join(root, "broken.tj"), []byte("tj!\x01\x02"))

	out := filepath.Join(t.TempDir(), "decoded")
	reportPath := filepath.Join(t.TempDir(), "report.json")

	res := run(t, "batch", root, "--out", out, "-w", "2", "--report", reportPath)
	require.Equal(t, 1, res.code)
	require.Equal(t, 2, strings.Count(res.stdout, "[OK] "))
	require.Equal(t, 1, strings.Count(res.stdout, "[ERROR] "))
	require.Contains(t, res.stdout, "2 decoded, 1 failed, 54 B written")

	got, err := os.ReadFile(filepath.Join(out, "images", "b.dec.png"))
	require.NoError(t, err)
	require.Equal(t, testPlaintext, string(got))
	require.NoFileExists(t, filepath.Join(root, "scripts", "a.dec.tj"))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
		Results   []struct {
			Path string `json:"path"`
			Kind string `json:"kind"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	require.Equal(t, 2, report.Succeeded)
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 3)
	require.Equal(t, "truncated-header", report.Results[0].Kind)
}

func TestBatch_AllGood(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tj"), container(t, "tj!"))

	res := run(t, "batch", root)
	require.Equal(t, 0, res.code, res.stderr)
	require.FileExists(t, filepath.Join(root, "a.dec.tj"))
}

func TestBatch_NoVariants(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.tj"), container(t, "tj!"))

	res := run(t, "batch", root, "--variants", "")
	require.Equal(t, 0, res.code, res.stderr)
	require.NotContains(t, res.stdout, "[OK]")
	require.Contains(t, res.stdout, "0 decoded, 0 failed")
	require.NoFileExists(t, filepath.Join(root, "a.dec.tj"))
}

func TestShow(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.tj"), container(t, "tj!"))

	res := run(t, "show", src)
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, testPlaintext, res.stdout)
	require.NoFileExists(t, filepath.Join(dir, "a.dec.tj"))
}

func TestPreviewText(t *testing.T) {
	got, err := previewText([]byte("caf\xe9"))
	require.NoError(t, err)
	require.Equal(t, "café", string(got))

	got, err = previewText([]byte("café"))
	require.NoError(t, err)
	require.Equal(t, "café", string(got))
}

func TestLogFile(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.tj"), container(t, "tj!"))
	logFile := filepath.Join(dir, "logs", "tjdecode.log")

	res := run(t, "decode", src, "--log-level", "info", "--log-file", logFile)
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"decoded"`)
}

func TestInvalidFlags(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.tj"), container(t, "tj!"))

	tests := map[string][]string{
		"log level":   {"decode", src, "--log-level", "loud"},
		"header size": {"decode", src, "--header-size", "4"},
		"workers":     {"batch", dir, "-w", "-3"},
		"no args":     {"decode"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			res := run(t, args...)
			require.Equal(t, 1, res.code)
			require.Contains(t, res.stderr, "tjdecode:")
		})
	}
}
