// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pkgsettings/pkgsettings/internal/config"
	"github.com/pkgsettings/pkgsettings/internal/locate"
	"github.com/pkgsettings/pkgsettings/internal/resolve"
	"github.com/pkgsettings/pkgsettings/internal/settings"
	"github.com/pkgsettings/pkgsettings/pkg/literal"
)

type (
	stubProvider struct {
		loaded config.Loaded
		err    error
		opts   []config.LoadOptions
	}

	stubSettings struct {
		eval    settings.Evaluation
		evalErr error
		gotPath resolve.Path
		gotDir  string
	}
)

func (p *stubProvider) Load(_ context.Context, opts config.LoadOptions) (config.Loaded, error) {
	p.opts = append(p.opts, opts)
	return p.loaded, p.err
}

func (s *stubSettings) Evaluate(_ context.Context, dir string, p resolve.Path) (settings.Evaluation, error) {
	s.gotDir, s.gotPath = dir, p
	return s.eval, s.evalErr
}

func (s *stubSettings) Generate(context.Context, string) (settings.GenerateResult, error) {
	return settings.GenerateResult{}, nil
}

func (s *stubSettings) Locator() *locate.Locator {
	l, _ := locate.New()
	return l
}

func newTestApp(provider config.Provider, svc SettingsService) (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: provider,
		Settings: func(*config.Config, *log.Logger) (SettingsService, error) {
			return svc, nil
		},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return app, &stdout, &stderr
}

func TestGet_PrintsGoExpression(t *testing.T) {
	provider := &stubProvider{loaded: config.Loaded{Config: config.DefaultConfig()}}
	svc := &stubSettings{eval: settings.Evaluation{
		Literal: literal.Literal{Shape: literal.ShapeScalar, Type: literal.TypeString, Text: "hi"},
	}}
	app, stdout, _ := newTestApp(provider, svc)

	if code := app.Run(context.Background(), []string{"get", "app", "greeting", "-C", "some/dir"}); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if got := strings.TrimSpace(stdout.String()); got != `"hi"` {
		t.Errorf("stdout = %q, want %q", got, `"hi"`)
	}
	if svc.gotDir != "some/dir" || svc.gotPath != (resolve.Path{Namespace: "app", Key: "greeting"}) {
		t.Errorf("Evaluate called with %q %v", svc.gotDir, svc.gotPath)
	}
}

func TestGet_ErrorExitsNonZero(t *testing.T) {
	provider := &stubProvider{loaded: config.Loaded{Config: config.DefaultConfig()}}
	svc := &stubSettings{evalErr: &resolve.Error{
		Segment:  resolve.SegmentKey,
		Manifest: "/ws/package.toml",
		Path:     resolve.Path{Namespace: "app", Key: "nope"},
	}}
	app, _, stderr := newTestApp(provider, svc)

	if code := app.Run(context.Background(), []string{"get", "app", "nope"}); code != 1 {
		t.Fatalf("Run() = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "failed to resolve setting") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestConfigFlagIsForwarded(t *testing.T) {
	provider := &stubProvider{loaded: config.Loaded{Config: config.DefaultConfig()}}
	app, stdout, _ := newTestApp(provider, &stubSettings{})

	if code := app.Run(context.Background(), []string{"--config", "custom.cue", "config", "dump"}); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if len(provider.opts) != 1 || provider.opts[0].ConfigFilePath != "custom.cue" {
		t.Errorf("Load options = %+v", provider.opts)
	}
	if !strings.Contains(stdout.String(), `manifest_name: "package.toml"`) {
		t.Errorf("dump output = %q", stdout.String())
	}
}

func TestConfigLoadFailureStopsCommand(t *testing.T) {
	provider := &stubProvider{err: errors.New("broken config")}
	svc := &stubSettings{}
	app, _, stderr := newTestApp(provider, svc)

	if code := app.Run(context.Background(), []string{"get", "app", "key"}); code != 1 {
		t.Fatalf("Run() = %d, want 1", code)
	}
	if svc.gotDir != "" {
		t.Error("settings service should not be used when configuration fails")
	}
	if !strings.Contains(stderr.String(), "broken config") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestVerboseFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UI.Verbose = true
	provider := &stubProvider{loaded: config.Loaded{Config: cfg}}
	app, _, _ := newTestApp(provider, &stubSettings{})

	if _, err := app.loadConfig(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !app.verbose {
		t.Error("ui.verbose should enable verbose output")
	}
}

func TestOpen_TweakErrorIsReturned(t *testing.T) {
	provider := &stubProvider{loaded: config.Loaded{Config: config.DefaultConfig()}}
	app, _, _ := newTestApp(provider, &stubSettings{})

	want := errors.New("bad override")
	_, err := app.open(context.Background(), func(*config.Config) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("open() error = %v, want %v", err, want)
	}
}
