// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"

	"github.com/pkgsettings/pkgsettings/internal/codegen"
	"github.com/pkgsettings/pkgsettings/internal/config"
	"github.com/pkgsettings/pkgsettings/internal/invocation"
	"github.com/pkgsettings/pkgsettings/internal/locate"
	"github.com/pkgsettings/pkgsettings/internal/logging"
	"github.com/pkgsettings/pkgsettings/internal/resolve"
	"github.com/pkgsettings/pkgsettings/pkg/literal"
)

// ErrGenerationFailed is returned by Generate when at least one diagnostic was reported.
var ErrGenerationFailed = errors.New("settings generation failed")

type (
	// Service evaluates settings according to a loaded configuration.
	Service struct {
		locator  *locate.Locator
		resolver *resolve.Resolver
		encoder  literal.Encoder
		output   string
		logger   *log.Logger
	}

	// Evaluation is the outcome of one successful lookup.
	Evaluation struct {
		Path resolve.Path
		// Root is the project root the component search started from.
		Root string
		// ComponentDir is where the upward walk started.
		ComponentDir string
		// Manifest is the file that supplied the value.
		Manifest string
		Literal  literal.Literal
	}

	// Diagnostic is a failure attached to a source position.
	Diagnostic struct {
		Pos token.Position
		Err error
	}

	// GenerateResult describes one Generate run.
	GenerateResult struct {
		Package     string
		Output      string
		Definitions []codegen.Definition
		Diagnostics []Diagnostic
		// Written is false when there was nothing to write, generation failed, or the
		// file already had the rendered content.
		Written bool
	}
)

// New builds a Service from cfg. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config, logger *log.Logger) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger = logging.OrDiscard(logger)

	locator, err := locate.New(
		locate.WithManifestName(cfg.ManifestName.String()),
		locate.WithExclude(cfg.ExcludeStrings()...),
		locate.WithLogger(logger.WithPrefix(logger.GetPrefix()+"/locate")),
	)
	if err != nil {
		return nil, err
	}

	output := cfg.Output.String()
	if output == "" {
		output = codegen.DefaultFileName
	}

	return &Service{
		locator: locator,
		resolver: resolve.New(
			resolve.WithManifestName(cfg.ManifestName.String()),
			resolve.WithLogger(logger.WithPrefix(logger.GetPrefix()+"/resolve")),
		),
		encoder: literal.Encoder{Strict: cfg.Strict},
		output:  output,
		logger:  logger,
	}, nil
}

// Locator exposes the locator for the diagnostics subcommands.
func (s *Service) Locator() *locate.Locator {
	return s.locator
}

// Evaluate resolves p for code living in dir: it finds the component's manifest
// directory below the project root, walks upward from there, and encodes the value.
func (s *Service) Evaluate(ctx context.Context, dir string, p resolve.Path) (Evaluation, error) {
	if ok, errs := p.IsValid(); !ok {
		return Evaluation{}, errors.Join(errs...)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Evaluation{}, fmt.Errorf("resolving directory: %w", err)
	}

	root := s.locator.FindRoot(abs)
	componentDir, err := s.locator.ComponentDir(ctx, root, abs, p.Namespace)
	if err != nil {
		return Evaluation{}, err
	}

	res, err := s.resolver.Resolve(ctx, p, componentDir)
	if err != nil {
		return Evaluation{}, err
	}

	lit, err := s.encoder.Encode(res.Value)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%s in '%s': %w", p, res.Manifest, err)
	}

	return Evaluation{
		Path:         p,
		Root:         root,
		ComponentDir: componentDir,
		Manifest:     res.Manifest,
		Literal:      lit,
	}, nil
}

// Generate scans the Go package in dir, evaluates every directive, and writes the
// generated file next to the sources. Every failure is collected; when there is at
// least one, nothing is written and the error wraps ErrGenerationFailed.
func (s *Service) Generate(ctx context.Context, dir string) (GenerateResult, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("resolving directory: %w", err)
	}

	pkg, err := invocation.ScanPackage(abs)
	if err != nil {
		return GenerateResult{}, err
	}

	result := GenerateResult{Package: pkg.Name, Output: filepath.Join(abs, s.output)}
	for _, problem := range pkg.Problems {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{Pos: problem.Pos, Err: problem})
	}

	for _, d := range pkg.Directives {
		eval, evalErr := s.Evaluate(ctx, abs, d.Path)
		if evalErr != nil {
			if errors.Is(evalErr, context.Canceled) || errors.Is(evalErr, context.DeadlineExceeded) {
				return result, evalErr
			}
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Pos: d.Pos, Err: evalErr})
			continue
		}
		result.Definitions = append(result.Definitions, codegen.Definition{
			Name:    d.Name,
			Path:    d.Path,
			Source:  relativeTo(eval.Root, eval.Manifest),
			Literal: eval.Literal,
		})
	}

	if n := len(result.Diagnostics); n > 0 {
		slices.SortStableFunc(result.Diagnostics, compareDiagnostics)
		return result, fmt.Errorf("%w: %d problem(s) in package %s", ErrGenerationFailed, n, pkg.Name)
	}

	if len(result.Definitions) == 0 {
		s.logger.Warn("no settings directives found, nothing to generate", "dir", abs)
		return result, nil
	}

	src, err := codegen.Render(pkg.Name, result.Definitions)
	if err != nil {
		return result, err
	}

	if current, readErr := os.ReadFile(result.Output); readErr == nil && bytes.Equal(current, src) {
		s.logger.Debug("generated file is up to date", "file", result.Output)
		return result, nil
	}
	if err := os.WriteFile(result.Output, src, 0o644); err != nil {
		return result, fmt.Errorf("writing %s: %w", result.Output, err)
	}
	result.Written = true
	s.logger.Debug("wrote generated file", "file", result.Output, "definitions", len(result.Definitions))

	return result, nil
}

// Message returns the diagnostic text without its position.
func (d Diagnostic) Message() string {
	var synErr *invocation.SyntaxError
	if errors.As(d.Err, &synErr) {
		return synErr.Msg
	}
	return d.Err.Error()
}

// String renders the diagnostic as "file:line:col: message".
func (d Diagnostic) String() string {
	if !d.Pos.IsValid() {
		return d.Message()
	}
	return fmt.Sprintf("%s: %s", d.Pos, d.Message())
}

func compareDiagnostics(a, b Diagnostic) int {
	switch {
	case a.Pos.Filename != b.Pos.Filename:
		if a.Pos.Filename < b.Pos.Filename {
			return -1
		}
		return 1
	case a.Pos.Line != b.Pos.Line:
		return a.Pos.Line - b.Pos.Line
	default:
		return a.Pos.Column - b.Pos.Column
	}
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
