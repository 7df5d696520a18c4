//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to an isolated project.
type testEnv struct {
	ProjectDir string // package root: package.json, LICENSE, README.md, src/
	OutDir     string // ProjectDir/dist
}

// setupTestEnv creates an isolated project directory and clears DISTPACK_*
// variables so the host environment cannot leak into the build settings.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "DISTPACK_") {
			t.Setenv(name, "")
		}
	}

	dir := t.TempDir()
	return &testEnv{ProjectDir: dir, OutDir: filepath.Join(dir, "dist")}
}

// setupPackage writes a small library modeled on a GraphQL-style package:
// nested modules, a declaration file, test fixtures, and the assets.
func setupPackage(t *testing.T, projectDir, manifestJSON string) {
	t.Helper()

	writeFile(t, filepath.Join(projectDir, "package.json"), manifestJSON)
	writeFile(t, filepath.Join(projectDir, "LICENSE"), "MIT License\n\nCopyright (c) GraphQL Contributors\n")
	writeFile(t, filepath.Join(projectDir, "README.md"), "# GraphQL.js\n\nThe JavaScript reference implementation for GraphQL.\n")

	src := filepath.Join(projectDir, "src")
	writeFile(t, filepath.Join(src, "index.js"), "export { GraphQLError } from './error/GraphQLError';\nexport { version } from './version';\n")
	writeFile(t, filepath.Join(src, "index.d.ts"), "export { GraphQLError } from './error/GraphQLError';\nexport declare const version: string;\n")
	writeFile(t, filepath.Join(src, "version.js"), "export const version = '17.0.0-beta.2';\n")
	writeFile(t, filepath.Join(src, "error", "GraphQLError.js"), "export class GraphQLError extends Error {}\n")
	writeFile(t, filepath.Join(src, "error", "GraphQLError.d.ts"), "export declare class GraphQLError extends Error {}\n")
	writeFile(t, filepath.Join(src, "error", "__tests__", "GraphQLError-test.js"), "describe('GraphQLError', () => {});\n")
	writeFile(t, filepath.Join(src, "__fixtures__", "schema.graphql"), "type Query { hello: String }\n")
	writeFile(t, filepath.Join(src, "jsutils", "README.md"), "internal helpers\n")
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// readFile returns the contents of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
