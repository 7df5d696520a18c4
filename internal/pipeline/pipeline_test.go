package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/distpack/internal/manifest"
	"github.com/agentx-labs/distpack/internal/transform"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const project = "/work/pkg"

const nativeCheck = `function _isNativeFunction(fn) { return Function.toString.call(fn).indexOf("[native code]") !== -1; }`

const devDescriptor = `{
  "name": "graphql",
  "version": "2.0.0-beta.1",
  "private": true,
  "scripts": {"build": "distpack build"},
  "devDependencies": {"@babel/core": "7.17.9"},
  "engines_on_npm": {"node": ">=14"},
  "publishConfig": {"tag": "beta"}
}`

type testProject struct {
	fs afero.Fs
}

func newProject(t *testing.T, descriptor string) *testProject {
	t.Helper()
	p := &testProject{fs: afero.NewMemMapFs()}
	p.write(t, "package.json", descriptor)
	p.write(t, "LICENSE", "MIT License\n")
	p.write(t, "README.md", "# graphql\n")
	p.write(t, "src/index.js", "export { graphql } from './graphql';\n")
	p.write(t, "src/graphql.js", "export function graphql() {}\n")
	p.write(t, "src/error/GraphQLError.js", "export class GraphQLError extends Error {}\n")
	p.write(t, "src/index.d.ts", "export function graphql(): void;\n")
	p.write(t, "src/__tests__/graphql-test.js", "describe('graphql', () => {});\n")
	p.write(t, "src/notes.md", "notes\n")
	return p
}

func (p *testProject) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(project, filepath.FromSlash(rel))
	if err := afero.WriteFile(p.fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func (p *testProject) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := afero.ReadFile(p.fs, filepath.Join(project, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading %s: %v", rel, err)
	}
	return string(data)
}

func (p *testProject) exists(rel string) bool {
	ok, _ := afero.Exists(p.fs, filepath.Join(project, filepath.FromSlash(rel)))
	return ok
}

// fakeBabel tags output with the environment and injects a runtime helper
// so the sanitizer has something to patch.
func fakeBabel() transform.Transformer {
	return transform.Func(func(_ context.Context, filename string, src []byte, env transform.Environment) ([]byte, error) {
		var out bytes.Buffer
		out.WriteString("// env:" + string(env) + "\n")
		if strings.HasSuffix(filename, "GraphQLError.js") {
			out.WriteString(nativeCheck + "\n")
		}
		out.Write(src)
		return out.Bytes(), nil
	})
}

func (p *testProject) builder(tr transform.Transformer) *Builder {
	return New(Options{
		Fs:          p.fs,
		ProjectDir:  project,
		Transformer: tr,
	})
}

func TestRun_ProducesArtifacts(t *testing.T) {
	p := newProject(t, devDescriptor)
	b := New(Options{Fs: p.fs, ProjectDir: project, Transformer: fakeBabel()})

	report, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for _, rel := range []string{
		"dist/index.js", "dist/index.mjs", "dist/index.js.flow",
		"dist/graphql.js", "dist/graphql.mjs", "dist/graphql.js.flow",
		"dist/error/GraphQLError.js", "dist/error/GraphQLError.mjs", "dist/error/GraphQLError.js.flow",
		"dist/index.d.ts",
		"dist/LICENSE", "dist/README.md", "dist/package.json",
	} {
		if !p.exists(rel) {
			t.Errorf("expected %s to exist", rel)
		}
	}

	// Non-code files are not copied; ignore patterns were not set so
	// __tests__ is built like any other directory.
	if p.exists("dist/notes.md") {
		t.Error("dist/notes.md should not be copied")
	}
	if !p.exists("dist/__tests__/graphql-test.js") {
		t.Error("without an ignore pattern __tests__ should be built")
	}

	if got := p.read(t, "dist/index.js.flow"); got != "// @flow strict\nexport { graphql } from './graphql';\n" {
		t.Errorf("flow sidecar = %q", got)
	}
	if got := p.read(t, "dist/index.js"); !strings.HasPrefix(got, "// env:cjs\n") {
		t.Errorf("cjs output = %q", got)
	}
	if got := p.read(t, "dist/index.mjs"); !strings.HasPrefix(got, "// env:mjs\n") {
		t.Errorf("mjs output = %q", got)
	}
	if got := p.read(t, "dist/index.d.ts"); got != "export function graphql(): void;\n" {
		t.Errorf("declaration copy = %q", got)
	}

	if report.CodeFiles != 4 || report.Declarations != 1 || report.Ignored != 1 {
		t.Errorf("report counts = code %d, decl %d, ignored %d", report.CodeFiles, report.Declarations, report.Ignored)
	}
}

func TestRun_IgnoresFixtureDirectories(t *testing.T) {
	p := newProject(t, devDescriptor)
	b := New(Options{Fs: p.fs, ProjectDir: project, Transformer: fakeBabel(), IgnoreDir: regexpFixtures})

	if _, err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if p.exists("dist/__tests__") {
		t.Error("dist/__tests__ should not exist")
	}
}

func TestRun_SanitizesBothFormats(t *testing.T) {
	p := newProject(t, devDescriptor)
	report, err := p.builder(fakeBabel()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for _, rel := range []string{"dist/error/GraphQLError.js", "dist/error/GraphQLError.mjs"} {
		got := p.read(t, rel)
		if strings.Contains(got, "[native code]") {
			t.Errorf("%s still contains the native code check", rel)
		}
		if !strings.Contains(got, "function _isNativeFunction(fn) { return false; }") {
			t.Errorf("%s missing the patched helper", rel)
		}
	}
	// The sidecar carries the original source, not generated code.
	if strings.Contains(p.read(t, "dist/error/GraphQLError.js.flow"), "_isNativeFunction") {
		t.Error("flow sidecar should not contain generated helpers")
	}
	if report.RulesApplied["native-function-check"] != 2 {
		t.Errorf("RulesApplied = %v, want native-function-check twice", report.RulesApplied)
	}
}

func TestRun_WritesPublishManifest(t *testing.T) {
	p := newProject(t, devDescriptor)
	report, err := p.builder(fakeBabel()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := `{
  "name": "graphql",
  "version": "2.0.0-beta.1",
  "publishConfig": {
    "tag": "beta"
  },
  "engines": {
    "node": ">=14"
  }
}`
	if got := p.read(t, "dist/package.json"); got != want {
		t.Errorf("dist/package.json =\n%s\nwant\n%s", got, want)
	}

	// The development descriptor is left as it was.
	if got := p.read(t, "package.json"); got != devDescriptor {
		t.Error("development package.json was modified")
	}

	if report.Package != "graphql" || report.Version != "2.0.0-beta.1" || report.Tag != "beta" {
		t.Errorf("report identity = %s@%s (%s)", report.Package, report.Version, report.Tag)
	}
}

func TestRun_DescriptorWithoutName(t *testing.T) {
	desc := `{
  "version": "2.0.0-beta.1",
  "publishConfig": {"tag": "beta"},
  "engines_on_npm": {"node": ">=14"},
  "scripts": {"build": "distpack build"},
  "devDependencies": {"@babel/core": "7.17.9"}
}`
	p := newProject(t, desc)

	report, err := p.builder(fakeBabel()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := `{
  "version": "2.0.0-beta.1",
  "publishConfig": {
    "tag": "beta"
  },
  "engines": {
    "node": ">=14"
  }
}`
	if got := p.read(t, "dist/package.json"); got != want {
		t.Errorf("dist/package.json =\n%s\nwant\n%s", got, want)
	}
	if report.Package != "" || report.Version != "2.0.0-beta.1" || report.Tag != "beta" {
		t.Errorf("report identity = %q@%s (%s)", report.Package, report.Version, report.Tag)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(buf.String(), "(unnamed)@2.0.0-beta.1") {
		t.Errorf("Render output = %q", buf.String())
	}
}

func TestRun_RejectsUnsafeOutDir(t *testing.T) {
	tests := []struct {
		name   string
		outDir string
		srcDir string
	}{
		{name: "project dir", outDir: "."},
		{name: "absolute project dir", outDir: project},
		{name: "parent of project", outDir: ".."},
		{name: "same as src", outDir: "src"},
		{name: "inside src", outDir: "src/dist"},
		{name: "contains src", outDir: "lib", srcDir: "lib/src"},
		{name: "ancestor of project", outDir: "/work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t, devDescriptor)
			srcDir := tt.srcDir
			if srcDir != "" {
				p.write(t, srcDir+"/index.js", "export {};\n")
			}
			b := New(Options{
				Fs:          p.fs,
				ProjectDir:  project,
				SrcDir:      srcDir,
				OutDir:      tt.outDir,
				Transformer: fakeBabel(),
			})

			_, err := b.Run(context.Background())
			var se *StageError
			if !errors.As(err, &se) || se.Stage != StageInit {
				t.Fatalf("expected init stage error, got %v", err)
			}
			if !errors.Is(err, ErrUnsafeOutDir) {
				t.Errorf("expected ErrUnsafeOutDir, got %v", err)
			}

			for _, rel := range []string{"package.json", "LICENSE", "src/index.js"} {
				if !p.exists(rel) {
					t.Errorf("%s was removed", rel)
				}
			}
		})
	}
}

func TestValidateOutDir(t *testing.T) {
	tests := []struct {
		name    string
		outDir  string
		srcDir  string
		keep    []string
		wantErr bool
	}{
		{"sibling", "/work/pkg/dist", "/work/pkg/src", []string{"/work/pkg/package.json"}, false},
		{"outside project", "/tmp/out", "/work/pkg/src", []string{"/work/pkg"}, false},
		{"prefix but not parent", "/work/pkg/src2", "/work/pkg/src", nil, false},
		{"empty keep ignored", "/work/pkg/dist", "/work/pkg/src", []string{""}, false},
		{"equal to src", "/work/pkg/src", "/work/pkg/src", nil, true},
		{"inside src", "/work/pkg/src/out", "/work/pkg/src", nil, true},
		{"contains src", "/work", "/work/pkg/src", nil, true},
		{"is kept path", "/work/pkg", "/work/pkg/src", []string{"/work/pkg"}, true},
		{"contains kept file", "/work/pkg/meta", "/work/pkg/src", []string{"/work/pkg/meta/package.json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutDir(tt.outDir, tt.srcDir, tt.keep...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateOutDir error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsafeOutDir) {
				t.Errorf("error %v does not wrap ErrUnsafeOutDir", err)
			}
		})
	}
}

func TestRun_CleansOutputDirectory(t *testing.T) {
	p := newProject(t, devDescriptor)
	p.write(t, "dist/stale.js", "old build\n")

	if _, err := p.builder(fakeBabel()).Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if p.exists("dist/stale.js") {
		t.Error("stale output survived the build")
	}
}

func TestRun_ValidationFailureWritesNoManifest(t *testing.T) {
	tests := []struct {
		name string
		desc string
		rule manifest.Rule
	}{
		{"tag mismatch", `{"name":"pkg","version":"2.0.0-rc.1","publishConfig":{"tag":"beta"}}`, manifest.RuleTagMismatch},
		{"missing tag", `{"name":"pkg","version":"2.0.0"}`, manifest.RuleMissingTag},
		{"bad version", `{"name":"pkg","version":"v2.0.0","publishConfig":{"tag":"latest"}}`, manifest.RuleVersionFormat},
		{"schema", `{"name":"pkg","version":"2.0.0","scripts":{"x":1},"publishConfig":{"tag":"latest"}}`, manifest.RuleSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t, tt.desc)
			_, err := p.builder(fakeBabel()).Run(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var se *StageError
			if !errors.As(err, &se) || se.Stage != StageBuildManifest {
				t.Errorf("expected build-manifest stage error, got %v", err)
			}
			var ve *manifest.ValidationError
			if !errors.As(err, &ve) || ve.Rule != tt.rule {
				t.Errorf("expected rule %s, got %v", tt.rule, err)
			}

			if p.exists("dist/package.json") {
				t.Error("dist/package.json must not be written when validation fails")
			}
			// Artifacts produced before the failure are left in place.
			if !p.exists("dist/index.js") {
				t.Error("expected partial output to remain")
			}
		})
	}
}

func TestRun_TransformFailureAborts(t *testing.T) {
	p := newProject(t, devDescriptor)
	var calls []string
	failing := transform.Func(func(_ context.Context, filename string, src []byte, env transform.Environment) ([]byte, error) {
		calls = append(calls, filepath.Base(filename)+":"+string(env))
		if strings.HasSuffix(filename, "graphql.js") {
			return nil, errors.New("Unexpected token (1:7)")
		}
		return src, nil
	})

	_, err := p.builder(failing).Run(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var te *transform.Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *transform.Error, got %T: %v", err, err)
	}
	if !strings.HasSuffix(te.File, "graphql.js") {
		t.Errorf("File = %q, want the failing source", te.File)
	}
	if !strings.Contains(err.Error(), "graphql.js") {
		t.Errorf("message %q does not name the file", err.Error())
	}

	// No retries and nothing after the failure.
	if last := calls[len(calls)-1]; last != "graphql.js:cjs" {
		t.Errorf("last transform call = %s, want graphql.js:cjs", last)
	}
	if p.exists("dist/package.json") || p.exists("dist/LICENSE") {
		t.Error("later stages ran after a transform failure")
	}
}

func TestRun_MissingDescriptor(t *testing.T) {
	p := &testProject{fs: afero.NewMemMapFs()}
	p.write(t, "src/index.js", "x\n")

	_, err := p.builder(fakeBabel()).Run(context.Background())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageInit {
		t.Fatalf("expected init stage error, got %v", err)
	}
}

func TestRun_MissingSourceRoot(t *testing.T) {
	p := &testProject{fs: afero.NewMemMapFs()}
	p.write(t, "package.json", devDescriptor)

	_, err := p.builder(fakeBabel()).Run(context.Background())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageEnumerate {
		t.Fatalf("expected enumerate stage error, got %v", err)
	}
}

func TestRun_MissingAsset(t *testing.T) {
	p := newProject(t, devDescriptor)
	if err := p.fs.Remove(filepath.Join(project, "README.md")); err != nil {
		t.Fatal(err)
	}

	_, err := p.builder(fakeBabel()).Run(context.Background())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageCopyAssets {
		t.Fatalf("expected copy-assets stage error, got %v", err)
	}
	if p.exists("dist/package.json") {
		t.Error("dist/package.json must not be written when an asset is missing")
	}
}

func TestRun_NoTransformer(t *testing.T) {
	p := newProject(t, devDescriptor)
	_, err := New(Options{Fs: p.fs, ProjectDir: project}).Run(context.Background())
	if err == nil {
		t.Fatal("expected error without a transformer")
	}
}

func TestRun_LogsStages(t *testing.T) {
	p := newProject(t, devDescriptor)
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	b := New(Options{Fs: p.fs, ProjectDir: project, Transformer: fakeBabel(), Logger: logger})
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	logged := buf.String()
	for _, stage := range []Stage{StageInit, StageCleanOutput, StageEnumerate, StageCopyAssets, StageBuildManifest, StageWriteManifest, StageReport} {
		if !strings.Contains(logged, string(stage)) {
			t.Errorf("log is missing stage %s", stage)
		}
	}
	if !strings.Contains(logged, "package built") {
		t.Error("log is missing the summary line")
	}
	// fakeBabel never emits Reflect.construct.
	if !strings.Contains(logged, "sanitize rule never applied rule=reflect-construct reason=") {
		t.Error("log does not report the unused reflect-construct rule")
	}
	if strings.Contains(logged, "rule=native-function-check reason") {
		t.Error("native-function-check was applied but reported as unused")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"index.js", KindCode},
		{"lib/a.js", KindCode},
		{"index.d.ts", KindDeclaration},
		{"index.ts", KindOther},
		{"index.mjs", KindOther},
		{"README.md", KindOther},
		{"js", KindOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestFlowSidecar(t *testing.T) {
	got := string(FlowSidecar([]byte("export const a = 1;\n")))
	if got != "// @flow strict\nexport const a = 1;\n" {
		t.Errorf("FlowSidecar = %q", got)
	}
}
