package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test data constants
const (
	testTemplateContent = "Hello, {{v:user|uppercase}}!"
	testDataJSON        = `{"user": "Alice"}`
	testExpectedOutput  = "Hello, ALICE!"
	testRowTemplate     = "<{{v:name}}>"
	testRowsJSON        = `[{"name": "a"}, {"name": "b"}]`
)

// setupTestData creates test files in a temp directory
func setupTestData(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	files := map[string]string{
		"template.txt": testTemplateContent,
		"data.json":    testDataJSON,
		"row.txt":      testRowTemplate,
		"rows.json":    testRowsJSON,
		"session.json": `{"user": {"name": "Sam"}}`,
		"cookie.json":  `{"theme": "dark"}`,
		"bad.json":     `{"user":`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte(content), FilePermissions))
	}
	return tmpDir
}

// setupConfig writes a config with a filesystem source holding templates
func setupConfig(t *testing.T, dir string, templates map[string]string, extra string) string {
	t.Helper()
	root := filepath.Join(dir, "templates")
	for name, body := range templates {
		path := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))+".tpl")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), FilePermissions))
	}

	config := "source:\n  driver: filesystem\n  dsn: " + root + "\n" + extra
	path := filepath.Join(dir, "temple.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), FilePermissions))
	return path
}

func runCLI(args []string, stdin string) (int, string, string) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := run(args, strings.NewReader(stdin), stdout, stderr)
	return code, stdout.String(), stderr.String()
}

// ==================== run() dispatch tests ====================

func TestRun_Dispatch(t *testing.T) {
	t.Run("no args shows help", func(t *testing.T) {
		code, stdout, _ := runCLI(nil, "")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, CLIName)
		assert.Contains(t, stdout, CmdNameRender)
		assert.Contains(t, stdout, CmdNameServe)
	})

	t.Run("unknown command", func(t *testing.T) {
		code, stdout, _ := runCLI([]string{"unknown"}, "")
		assert.Equal(t, ExitCodeUsageError, code)
		assert.Contains(t, stdout, ErrMsgUnknownCommand)
	})

	t.Run("help per command", func(t *testing.T) {
		for cmd, text := range map[string]string{
			CmdNameRender:  HelpRenderUsage,
			CmdNameServe:   HelpServeUsage,
			CmdNameVersion: HelpVersionUsage,
			CmdNameHelp:    HelpHelpUsage,
		} {
			code, stdout, _ := runCLI([]string{CmdNameHelp, cmd}, "")
			assert.Equal(t, ExitCodeSuccess, code, cmd)
			assert.Contains(t, stdout, text, cmd)
		}
	})
}

// ==================== render tests ====================

func TestRender(t *testing.T) {
	dir := setupTestData(t)
	tpl := filepath.Join(dir, "template.txt")

	t.Run("inline data", func(t *testing.T) {
		code, stdout, stderr := runCLI([]string{CmdNameRender, "-t", tpl, "-d", testDataJSON}, "")
		assert.Equal(t, ExitCodeSuccess, code, stderr)
		assert.Equal(t, testExpectedOutput, stdout)
	})

	t.Run("data file and long flags", func(t *testing.T) {
		code, stdout, _ := runCLI([]string{CmdNameRender, "--template", tpl, "--data-file", filepath.Join(dir, "data.json")}, "")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, testExpectedOutput, stdout)
	})

	t.Run("stdin template", func(t *testing.T) {
		code, stdout, _ := runCLI([]string{CmdNameRender, "-t", InputSourceStdin, "-d", `{"x": "1,2,3"}`},
			"{{v:x|split?delimiter=comma|length}}")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "3", stdout)
	})

	t.Run("rows", func(t *testing.T) {
		code, stdout, _ := runCLI([]string{CmdNameRender, "-t", filepath.Join(dir, "row.txt"), "-r", filepath.Join(dir, "rows.json")}, "")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "<a><b>", stdout)
	})

	t.Run("ambient files", func(t *testing.T) {
		code, stdout, _ := runCLI([]string{CmdNameRender, "-t", InputSourceStdin,
			"--session", filepath.Join(dir, "session.json"),
			"--cookie", filepath.Join(dir, "cookie.json"),
		}, "{{sess:user.name}}/{{cookie:theme}}")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "Sam/dark", stdout)
	})

	t.Run("output file", func(t *testing.T) {
		out := filepath.Join(dir, "out.txt")
		code, stdout, _ := runCLI([]string{CmdNameRender, "-t", tpl, "-d", testDataJSON, "-o", out}, "")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Empty(t, stdout)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, testExpectedOutput, string(data))
	})

	t.Run("verbose logs to stderr", func(t *testing.T) {
		code, _, stderr := runCLI([]string{CmdNameRender, "-v", "-t", InputSourceStdin}, "{{nope:x}}")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.NotEmpty(t, stderr)
	})
}

func TestRender_Errors(t *testing.T) {
	dir := setupTestData(t)
	tpl := filepath.Join(dir, "template.txt")

	tests := []struct {
		name     string
		args     []string
		exitCode int
		message  string
	}{
		{"no template", []string{}, ExitCodeUsageError, ErrMsgMissingTemplate},
		{"template and name", []string{"-t", tpl, "-n", "x"}, ExitCodeUsageError, ErrMsgTemplateAndName},
		{"unknown flag", []string{"-t", tpl, "--bogus"}, ExitCodeUsageError, ErrMsgInvalidFlags},
		{"name without source", []string{"-n", "x"}, ExitCodeUsageError, ErrMsgNameNeedsSource},
		{"missing file", []string{"-t", filepath.Join(dir, "absent.txt")}, ExitCodeInputError, ErrMsgReadFileFailed},
		{"invalid json", []string{"-t", tpl, "-d", "{"}, ExitCodeInputError, ErrMsgInvalidJSON},
		{"invalid rows", []string{"-t", tpl, "-r", filepath.Join(dir, "bad.json")}, ExitCodeInputError, ErrMsgInvalidRows},
		{"invalid ambient", []string{"-t", tpl, "--server", filepath.Join(dir, "bad.json")}, ExitCodeInputError, ErrMsgInvalidAmbient},
		{"missing config", []string{"-t", tpl, "-c", filepath.Join(dir, "absent.yaml")}, ExitCodeInputError, ErrMsgConfigFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(append([]string{CmdNameRender}, tt.args...), "")
			assert.Equal(t, tt.exitCode, code)
			assert.Contains(t, stderr, tt.message)
		})
	}
}

func TestRender_WithConfig(t *testing.T) {
	dir := t.TempDir()
	config := setupConfig(t, dir, map[string]string{
		"mail.greeting": "Hi {{v:name}}",
		"page":          "[{{tpl:mail.greeting|uppercase}}]",
		"loop":          "{{tpl:loop}}",
	}, "max_depth: 3\n")

	t.Run("named template", func(t *testing.T) {
		code, stdout, stderr := runCLI([]string{CmdNameRender, "-c", config, "-n", "page", "-d", `{"name": "Bo"}`}, "")
		assert.Equal(t, ExitCodeSuccess, code, stderr)
		assert.Equal(t, "[HI BO]", stdout)
	})

	t.Run("inline template forwards into the source", func(t *testing.T) {
		code, stdout, _ := runCLI([]string{CmdNameRender, "-c", config, "-t", InputSourceStdin, "-d", `{"name": "Al"}`},
			"{{_:|fwdt?name=mail.greeting}}!")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "Hi Al!", stdout)
	})

	t.Run("missing named template", func(t *testing.T) {
		code, _, stderr := runCLI([]string{CmdNameRender, "-c", config, "-n", "nope"}, "")
		assert.Equal(t, ExitCodeError, code)
		assert.Contains(t, stderr, ErrMsgRenderFailed)
	})

	t.Run("depth exceeded", func(t *testing.T) {
		code, stdout, stderr := runCLI([]string{CmdNameRender, "-c", config, "-n", "loop"}, "")
		assert.Equal(t, ExitCodeDepthError, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, ErrMsgRenderFailed)
	})

	t.Run("custom marks", func(t *testing.T) {
		marks := setupConfig(t, t.TempDir(), nil, "marks:\n  start: \"[[\"\n  end: \"]]\"\n")
		code, stdout, _ := runCLI([]string{CmdNameRender, "-c", marks, "-t", InputSourceStdin, "-d", `{"a": "x"}`},
			"[[v:a]] {{v:a}}")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "x {{v:a}}", stdout)
	})
}

// ==================== version tests ====================

func TestVersion(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		code, stdout, _ := runCLI([]string{CmdNameVersion}, "")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, "go-temple version")
	})

	t.Run("json", func(t *testing.T) {
		code, stdout, _ := runCLI([]string{CmdNameVersion, "-F", OutputFormatJSON}, "")
		assert.Equal(t, ExitCodeSuccess, code)

		var v versionInfo
		require.NoError(t, json.Unmarshal([]byte(stdout), &v))
		assert.NotEmpty(t, v.GoVersion)
	})

	t.Run("invalid format", func(t *testing.T) {
		code, _, stderr := runCLI([]string{CmdNameVersion, "--format", "xml"}, "")
		assert.Equal(t, ExitCodeUsageError, code)
		assert.Contains(t, stderr, ErrMsgInvalidFormat)
	})
}
