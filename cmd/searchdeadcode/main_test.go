package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/urfave/cli/v2"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/output"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/config"
)

// TestGetPaths verifies path handling from CLI arguments.
func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"no args defaults to current dir", []string{}, []string{"."}},
		{"single path", []string{"/app/src"}, []string{"/app/src"}},
		{"multiple paths", []string{"/app", "/lib"}, []string{"/app", "/lib"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &cli.App{
				Action: func(c *cli.Context) error {
					result := getPaths(c)
					if strings.Join(result, ",") != strings.Join(tt.expected, ",") {
						t.Errorf("getPaths() = %v, want %v", result, tt.expected)
					}
					return nil
				},
			}
			if err := app.Run(append([]string{"test"}, tt.args...)); err != nil {
				t.Fatalf("app.Run() error = %v", err)
			}
		})
	}
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Main.java": `package com.app;

public class Main {
    public static void main(String[] args) {
        new Service().start();
    }
}
`,
		"Service.java": `package com.app;

class Service {
    void start() {}
    void stop() {}
}
`,
		"Legacy.java": `package com.app;

class Ping {
    void ping() { new Pong().pong(); }
}

class Pong {
    void pong() { new Ping().ping(); }
}
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	err := app.Run(append([]string{"searchdeadcode", "--quiet", "--no-cache"}, args...))
	return buf.String(), err
}

func readFindings(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var report struct {
		Findings []struct {
			FQN   string `json:"fqn"`
			Issue string `json:"issue"`
		} `json:"findings"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	found := make(map[string]string)
	for _, f := range report.Findings {
		found[f.FQN] = f.Issue
	}
	return found
}

func TestAnalyzeCommand(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "report.json")

	if _, err := runApp(t, "-f", "json", "-o", out, "analyze", dir); err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	found := readFindings(t, out)
	if found["com.app.Ping"] != "unused-class" || found["com.app.Pong"] != "unused-class" {
		t.Errorf("findings = %v", found)
	}
	if _, ok := found["com.app.Service.stop"]; ok {
		t.Errorf("standard mode reported member of reachable class: %v", found)
	}
}

func TestDefaultActionDeepMode(t *testing.T) {
	dir := writeProject(t)
	out := filepath.Join(t.TempDir(), "report.json")

	if _, err := runApp(t, "-f", "json", "-o", out, "--mode", "deep", dir); err != nil {
		t.Fatalf("default action error = %v", err)
	}
	found := readFindings(t, out)
	if found["com.app.Service.stop"] != "unused-member" {
		t.Errorf("deep mode findings = %v", found)
	}
}

func TestAnalyzeSARIF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dead.sarif")
	if _, err := runApp(t, "-f", "sarif", "-o", out, "analyze", writeProject(t)); err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"version": "2.1.0"`) || !strings.Contains(string(data), "unused-class") {
		t.Errorf("SARIF output:\n%s", data)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	dir := writeProject(t)

	if _, err := runApp(t, "-f", "xml", "analyze", dir); err == nil || !strings.Contains(err.Error(), output.ErrUnsupportedFormat.Error()) {
		t.Errorf("bad format error = %v", err)
	}
	if _, err := runApp(t, "analyze", "--mode", "aggressive", dir); err == nil {
		t.Error("expected error for invalid mode")
	}
	if _, err := runApp(t, "--config", filepath.Join(dir, "missing.toml"), "analyze", dir); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestAnalyzeRemoteSource(t *testing.T) {
	dir := writeProject(t)
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddGlob("*.java"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	}); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "report.json")
	if _, err := runApp(t, "-f", "json", "-o", out, "analyze", "file://"+dir+"@master"); err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	found := readFindings(t, out)
	if found["com.app.Ping"] != "unused-class" {
		t.Errorf("findings = %v", found)
	}
	if _, err := runApp(t, "analyze", "owner/repo@"); err == nil {
		t.Error("expected error for empty ref")
	}
}

func TestCyclesCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cycles.md")
	if _, err := runApp(t, "-f", "markdown", "-o", out, "cycles", writeProject(t)); err != nil {
		t.Fatalf("cycles error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Dead Cycles", "```mermaid", "com.app.Ping"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("cycles output missing %q:\n%s", want, data)
		}
	}
}

func TestInitAndConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "searchdeadcode.toml")

	if _, err := runApp(t, "init", "--path", path); err != nil {
		t.Fatalf("init error = %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if _, err := runApp(t, "init", "--path", path); err == nil {
		t.Error("init should refuse to overwrite without --force")
	}
	if _, err := runApp(t, "init", "--path", path, "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}

	out, err := runApp(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "# Configuration from: "+path) || !strings.Contains(out, "[analysis]") {
		t.Errorf("config show output:\n%s", out)
	}

	if _, err := runApp(t, "--config", path, "config", "validate"); err != nil {
		t.Errorf("config validate error = %v", err)
	}
}

func TestConfigValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchdeadcode.toml")
	if err := os.WriteFile(path, []byte("[analysis]\nmode = \"aggressive\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runApp(t, "--config", path, "config", "validate"); err == nil {
		t.Error("expected validation error")
	}
}

func TestMCPManifest(t *testing.T) {
	out, err := runApp(t, "mcp", "manifest")
	if err != nil {
		t.Fatalf("mcp manifest error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("invalid manifest: %v\n%s", err, out)
	}
	if m["name"] != "io.github.pyctamovna/searchdeadcode" {
		t.Errorf("manifest name = %v", m["name"])
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := filepath.Join(dir, "searchdeadcode.toml")
	if err := os.WriteFile(path, []byte("[cache]\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "--config", path, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats error = %v", err)
	}
	if !strings.Contains(out, "Entries:   0") {
		t.Errorf("cache stats output:\n%s", out)
	}

	if err := os.WriteFile(filepath.Join(cacheDir, "entry.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = runApp(t, "--config", path, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats error = %v", err)
	}
	if !strings.Contains(out, "Entries:   1") || !strings.Contains(out, "Oldest:") {
		t.Errorf("cache stats output:\n%s", out)
	}

	if _, err := runApp(t, "--config", path, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Errorf("cache dir still present: %v", err)
	}
}
