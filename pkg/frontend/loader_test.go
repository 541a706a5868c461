package frontend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/cache"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/config"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

const kotlinDoc = `{
  "version": 1,
  "generator": "kotlin-extractor",
  "files": [{
    "path": "app/src/main/kotlin/com/app/Repo.kt",
    "language": "kotlin",
    "package": "com.app",
    "declarations": [
      {"id": {"start": 0, "end": 80}, "name": "Repo", "fqn": "com.app.Repo", "kind": "class",
       "location": {"line": 3, "column": 1}},
      {"id": {"start": 20, "end": 60}, "name": "load", "fqn": "com.app.Repo.load", "kind": "function",
       "parent": {"start": 0, "end": 80}, "visibility": "private"}
    ],
    "references": [
      {"from": {"start": 20, "end": 60}, "name": "Cache", "kind": "type", "imports": ["com.app.data.Cache"]}
    ]
  }]
}`

func TestReadDocumentJSON(t *testing.T) {
	doc, err := ReadDocumentJSON(strings.NewReader(kotlinDoc))
	require.NoError(t, err)
	require.Len(t, doc.Files, 1)
	assert.Equal(t, "kotlin-extractor", doc.Generator)

	f := doc.Files[0]
	assert.Equal(t, models.LanguageKotlin, f.Language)
	require.Len(t, f.Declarations, 2)

	repo, load := f.Declarations[0], f.Declarations[1]
	assert.Equal(t, f.Path, repo.ID.File)
	assert.Equal(t, f.Path, repo.Location.File)
	assert.Equal(t, models.VisibilityPublic, repo.Visibility)
	assert.Equal(t, models.LanguageKotlin, repo.Language)
	assert.Equal(t, models.VisibilityPrivate, load.Visibility)
	require.NotNil(t, load.Parent)
	assert.Equal(t, repo.ID, *load.Parent)

	require.Len(t, f.References, 1)
	assert.Equal(t, load.ID, f.References[0].From)
	assert.Equal(t, []string{"com.app.data.Cache"}, f.References[0].ImportsInScope)
}

func TestReadDocumentJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"version": 1,`},
		{"wrong version", `{"version": 2, "files": []}`},
		{"missing files", `{"version": 1}`},
		{"unknown kind", `{"version": 1, "files": [{"path": "A.kt", "language": "kotlin",
			"declarations": [{"id": {"start": 0, "end": 1}, "name": "A", "kind": "struct"}]}]}`},
		{"unknown language", `{"version": 1, "files": [{"path": "a.swift", "language": "swift"}]}`},
		{"empty name", `{"version": 1, "files": [{"path": "A.kt", "language": "kotlin",
			"references": [{"from": {"start": 0, "end": 1}, "name": "", "kind": "call"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocumentJSON(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument), err)
		})
	}
}

func TestReadDocumentYAML(t *testing.T) {
	doc, err := ReadDocumentYAML(strings.NewReader(`
version: 1
files:
  - path: app/Main.kt
    language: kotlin
    declarations:
      - id: {start: 0, end: 10}
        name: main
        kind: function
`))
	require.NoError(t, err)
	require.Len(t, doc.Files, 1)
	f := doc.Files[0]
	require.Len(t, f.Declarations, 1)
	assert.Equal(t, models.KindFunction, f.Declarations[0].Kind)
	assert.Equal(t, "app/Main.kt", f.Declarations[0].ID.File)
	assert.NotNil(t, f.References)

	_, err = ReadDocumentYAML(strings.NewReader("version: 1\nfiles:\n  - path: x\n"))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = ReadDocumentYAML(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestDetect(t *testing.T) {
	tests := map[string]Kind{
		"src/Main.java":       KindJava,
		"src/Main.JAVA":       KindJava,
		"build/app.sdc.json":  KindDocumentJSON,
		"build/app.sdc.yaml":  KindDocumentYAML,
		"build/app.sdc.yml":   KindDocumentYAML,
		"src/Main.kt":         KindKotlin,
		"build.gradle.kts":    KindKotlin,
		"package.json":        KindUnsupported,
		"AndroidManifest.xml": KindUnsupported,
	}
	for path, want := range tests {
		assert.Equal(t, want, Detect(path), path)
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestLoader_Discover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/src/main/java/com/app/Main.java": "class Main {}",
		"app/src/main/java/com/app/R.java":    "class R {}",
		"app/src/main/kotlin/com/app/Repo.kt": "class Repo",
		"app/build/generated/Gen.java":        "class Gen {}",
		"app/kotlin.sdc.json":                 kotlinDoc,
		"README.md":                           "# app",
	})

	files, kotlin, err := NewLoader().Discover([]string{root})
	require.NoError(t, err)
	assert.Equal(t, 1, kotlin)
	assert.Equal(t, []string{
		filepath.ToSlash(filepath.Join(root, "app/kotlin.sdc.json")),
		filepath.ToSlash(filepath.Join(root, "app/src/main/java/com/app/Main.java")),
	}, files)

	_, _, err = NewLoader().Discover([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/com/app/Main.java": "package com.app;\npublic class Main { public static void main(String[] a) {} }\n",
		"src/com/app/Util.java": "package com.app;\nclass Util { static int twice(int x) { return x * 2; } }\n",
		"kotlin.sdc.json":       kotlinDoc,
		"broken.sdc.yaml":       "version: 3\nfiles: []\n",
	})

	c, err := cache.New(filepath.Join(t.TempDir(), "cache"), 0, true, cache.WithVersion(Version))
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	loader := NewLoader(WithConfig(cfg), WithCache(c), WithWorkers(2))

	res, err := loader.Load(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, res.Files, 3)
	assert.Equal(t, 0, res.CacheHits)

	paths := make([]string, len(res.Files))
	for i, f := range res.Files {
		paths[i] = f.Path
	}
	assert.Contains(t, paths, "app/src/main/kotlin/com/app/Repo.kt")
	assert.Contains(t, paths, filepath.ToSlash(filepath.Join(root, "src/com/app/Main.java")))

	require.Equal(t, 1, res.Errors.Len())
	failed := res.Errors[0]
	assert.True(t, strings.HasSuffix(failed.Path, "broken.sdc.yaml"))
	assert.ErrorIs(t, failed.Err, ErrInvalidDocument)

	again, err := loader.Load(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 2, again.CacheHits)
	assert.Len(t, again.Files, 3)
}

func TestLoader_LoadCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"A.java": "class A {}"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewLoader().Load(ctx, []string{root})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Equal(t, 1, res.Errors.Len())
}
