// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/pkgsettings/pkgsettings/internal/watch"
)

// watchPackage generates once and then regenerates after every relevant change
// below the project root until ctx is canceled. Generation failures are rendered
// and do not end the watch.
func watchPackage(ctx context.Context, app *App, sess *session, dir string, debounce time.Duration) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	locator := sess.settings.Locator()
	root := locator.FindRoot(abs)
	pkgRel, err := filepath.Rel(root, abs)
	if err != nil {
		return err
	}
	pkgRel = filepath.ToSlash(pkgRel)

	regenerate := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			sess.logger.Info("regenerating", "changed", changed)
		}
		res, err := sess.settings.Generate(ctx, dir)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			renderError(app.stderr, generateError(dir, res, err), app.verbose, glamourStyleFor(app.colorScheme))
			return nil
		}
		reportGenerated(app.stdout, res, true)
		return nil
	}

	_ = regenerate(ctx, nil)
	if ctx.Err() != nil {
		return nil
	}

	cfg := sess.loaded.Config
	w, err := watch.New(watch.Options{
		Root:     root,
		Patterns: []string{"**/" + locator.ManifestName(), path.Join(pkgRel, "*.go")},
		// Our own writes must not retrigger generation.
		Exclude:  append(cfg.ExcludeStrings(), path.Join(pkgRel, string(cfg.Output))),
		Debounce: debounce,
		Logger:   sess.logger.WithPrefix(sess.logger.GetPrefix() + "/watch"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stderr, "%s %s\n", SubtitleStyle.Render("watching"), displayPath(root))
	return w.Run(ctx, regenerate)
}
