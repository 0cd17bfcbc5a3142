// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkgsettings/pkgsettings/internal/config"
	"github.com/pkgsettings/pkgsettings/internal/invocation"
	"github.com/pkgsettings/pkgsettings/internal/resolve"
	"github.com/pkgsettings/pkgsettings/internal/testutil"
	"github.com/pkgsettings/pkgsettings/pkg/literal"
)

const rootManifest = `[workspace]
members = ["app", "lib"]

[package]
name = "root"

[package.metadata.settings.app]
shared = "from-root"
`

// newProject lays out a workspace with an "app" component and a Go package below
// it, returning the workspace root and the Go package directory.
func newProject(t *testing.T, goSource string) (string, string) {
	t.Helper()

	root := t.TempDir()
	testutil.WriteManifest(t, root, rootManifest)
	testutil.WriteManifest(t, filepath.Join(root, "app"), testutil.PackageManifest("app", "app",
		`greeting = "hi"`,
		`ports = [80, 443]`,
		`enabled = true`,
		`limits = { cpu = 2 }`,
		`mixed = ["a", 1]`,
	))
	testutil.WriteManifest(t, filepath.Join(root, "lib"), testutil.PackageManifest("lib", "lib", `level = 3`))

	pkgDir := filepath.Join(root, "app", "internal", "srv")
	testutil.MustWriteFile(t, filepath.Join(pkgDir, "srv.go"), goSource)
	return root, pkgDir
}

func newService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestEvaluate(t *testing.T) {
	root, pkgDir := newProject(t, "package srv\n")
	s := newService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name         string
		path         resolve.Path
		wantManifest string
		wantEval     any
	}{
		{"own manifest", resolve.Path{Namespace: "app", Key: "greeting"}, filepath.Join(root, "app", "package.toml"), "hi"},
		{"inherited from workspace", resolve.Path{Namespace: "app", Key: "shared"}, filepath.Join(root, "package.toml"), "from-root"},
		{"other component", resolve.Path{Namespace: "lib", Key: "level"}, filepath.Join(root, "lib", "package.toml"), int64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Evaluate(ctx, pkgDir, tt.path)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got.Manifest != tt.wantManifest {
				t.Errorf("Manifest = %s, want %s", got.Manifest, tt.wantManifest)
			}
			if got.Root != root {
				t.Errorf("Root = %s, want %s", got.Root, root)
			}
			if v := got.Literal.Eval(); v != tt.wantEval {
				t.Errorf("Eval() = %#v, want %#v", v, tt.wantEval)
			}
		})
	}
}

func TestEvaluate_NotFound(t *testing.T) {
	root, pkgDir := newProject(t, "package srv\n")

	_, err := newService(t, nil).Evaluate(context.Background(), pkgDir, resolve.Path{Namespace: "app", Key: "missing"})
	if !errors.Is(err, resolve.ErrPathSegmentMissing) {
		t.Fatalf("Evaluate() error = %v, want ErrPathSegmentMissing", err)
	}
	want := "failed to find table 'package.metadata.settings.app.missing' in '" + filepath.Join(root, "package.toml") + "'"
	if err.Error() != want {
		t.Errorf("Evaluate() error = %q, want %q", err, want)
	}
}

func TestEvaluate_StrictRejectsTables(t *testing.T) {
	_, pkgDir := newProject(t, "package srv\n")
	cfg := config.DefaultConfig()
	cfg.Strict = true

	_, err := newService(t, cfg).Evaluate(context.Background(), pkgDir, resolve.Path{Namespace: "app", Key: "limits"})
	if !errors.Is(err, literal.ErrUnsupportedValue) {
		t.Errorf("Evaluate() error = %v, want ErrUnsupportedValue", err)
	}
}

func TestEvaluate_InvalidPath(t *testing.T) {
	_, err := newService(t, nil).Evaluate(context.Background(), t.TempDir(), resolve.Path{Namespace: "", Key: "k"})
	if !errors.Is(err, resolve.ErrInvalidPath) {
		t.Errorf("Evaluate() error = %v, want ErrInvalidPath", err)
	}
}

func TestGenerate_WritesFile(t *testing.T) {
	_, pkgDir := newProject(t, `package srv

//go:generate pkgsettings generate

//settings:def Greeting = settings("app", "greeting")
//settings:def Ports = settings("app", "ports")
//settings:def Shared = settings("app", "shared")
//settings:def Level = settings("lib", "level")
`)
	s := newService(t, nil)

	res, err := s.Generate(context.Background(), pkgDir)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !res.Written || res.Package != "srv" || len(res.Definitions) != 4 {
		t.Fatalf("Generate() = %+v", res)
	}
	if want := filepath.Join(pkgDir, "settings_gen.go"); res.Output != want {
		t.Errorf("Output = %s, want %s", res.Output, want)
	}

	data, err := os.ReadFile(res.Output)
	if err != nil {
		t.Fatal(err)
	}
	src := string(data)
	for _, want := range []string{
		"// Code generated by pkgsettings. DO NOT EDIT.",
		"package srv",
		"// Greeting resolves package.metadata.settings.app.greeting from app/package.toml.",
		`const Greeting = "hi"`,
		"var Ports = []int64{80, 443}",
		"// Shared resolves package.metadata.settings.app.shared from package.toml.",
		`const Shared = "from-root"`,
		"const Level int64 = 3",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated file missing %q\n%s", want, src)
		}
	}

	// A second run renders the same bytes and leaves the file alone.
	again, err := s.Generate(context.Background(), pkgDir)
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	if again.Written {
		t.Error("second Generate() rewrote an up-to-date file")
	}
}

func TestGenerate_CustomOutput(t *testing.T) {
	_, pkgDir := newProject(t, "package srv\n\n//settings:def Greeting = settings(\"app\", \"greeting\")\n")
	cfg := config.DefaultConfig()
	cfg.Output = "zz_settings.go"

	res, err := newService(t, cfg).Generate(context.Background(), pkgDir)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(pkgDir, "zz_settings.go")); statErr != nil || !res.Written {
		t.Errorf("custom output not written: %v", statErr)
	}
}

func TestGenerate_CollectsEveryDiagnostic(t *testing.T) {
	_, pkgDir := newProject(t, `package srv

//settings:def Greeting = settings("app", "greeting")
//settings:def Missing = settings("app", "nope")
//settings:def Bad = settings("app")
//settings:def Greeting = settings("app", "ports")
//settings:def Ghost = settings("ghost", "key")
`)

	res, err := newService(t, nil).Generate(context.Background(), pkgDir)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("Generate() error = %v, want ErrGenerationFailed", err)
	}
	if res.Written {
		t.Error("nothing should be written when a directive fails")
	}
	if _, statErr := os.Stat(filepath.Join(pkgDir, "settings_gen.go")); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("generated file exists after failure: %v", statErr)
	}

	if len(res.Diagnostics) != 4 {
		for _, d := range res.Diagnostics {
			t.Log(d)
		}
		t.Fatalf("got %d diagnostics, want 4", len(res.Diagnostics))
	}

	wantLines := []int{4, 5, 6, 7}
	for i, d := range res.Diagnostics {
		if d.Pos.Line != wantLines[i] {
			t.Errorf("diagnostic %d at line %d, want %d (%s)", i, d.Pos.Line, wantLines[i], d)
		}
		if !strings.HasPrefix(d.String(), filepath.Join(pkgDir, "srv.go")+":") {
			t.Errorf("diagnostic %q lacks a file position", d)
		}
	}

	if !errors.Is(res.Diagnostics[1].Err, invocation.ErrSyntax) {
		t.Errorf("arity problem should be a syntax error: %v", res.Diagnostics[1].Err)
	}
	if !strings.Contains(res.Diagnostics[2].String(), "Greeting redeclared") {
		t.Errorf("duplicate not reported: %s", res.Diagnostics[2])
	}
	if !strings.Contains(res.Diagnostics[0].String(), "'package.metadata.settings.app.nope'") {
		t.Errorf("missing key not reported: %s", res.Diagnostics[0])
	}
}

func TestGenerate_NoDirectives(t *testing.T) {
	_, pkgDir := newProject(t, "package srv\n\nconst x = 1\n")

	res, err := newService(t, nil).Generate(context.Background(), pkgDir)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Written || len(res.Definitions) != 0 {
		t.Errorf("Generate() = %+v, want nothing written", res)
	}
}

func TestGenerate_NoGoFiles(t *testing.T) {
	_, err := newService(t, nil).Generate(context.Background(), t.TempDir())
	if !errors.Is(err, invocation.ErrNoGoFiles) {
		t.Errorf("Generate() error = %v, want ErrNoGoFiles", err)
	}
}

func TestGenerate_Canceled(t *testing.T) {
	_, pkgDir := newProject(t, "package srv\n\n//settings:def Greeting = settings(\"app\", \"greeting\")\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(t, nil).Generate(ctx, pkgDir)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestNew_InvalidExclude(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude = []config.ExcludePattern{"[oops"}
	if _, err := New(cfg, nil); err == nil {
		t.Error("New() should reject a malformed exclude pattern")
	}
}
