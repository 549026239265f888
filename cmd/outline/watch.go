package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render the outline whenever a document changes",
		Long: `Render the outline of a document, then render it again every time the
file is saved. Output goes to stdout, or replaces --out on each change.

Examples:
  outline watch guide.md
  outline watch --out nav.html --numbering guide.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if path == "-" {
				return fmt.Errorf("watch needs a file path, not stdin")
			}
			ctx := cmd.Context()
			log := a.logger()

			eng, closeEngine, err := a.newEngine(log)
			if err != nil {
				return err
			}
			defer closeEngine()

			out := a.v.GetString("out")
			build := func() error {
				req, err := a.request(ctx, nil, path)
				if err != nil {
					return err
				}
				// The cache is keyed by document id, not content.
				if req.DocumentID != "" {
					if _, err := eng.Invalidate(ctx, req.DocumentID); err != nil {
						log.Warn("invalidate failed", "document_id", req.DocumentID, "error", err)
					}
				}
				var buf bytes.Buffer
				if err := a.renderTo(ctx, &buf, eng, req); err != nil {
					return err
				}
				if out == "" {
					_, err = cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				return os.WriteFile(out, buf.Bytes(), 0644)
			}

			if err := build(); err != nil {
				return err
			}
			return watchFile(ctx, path, a.v.GetDuration("debounce"), log, func() {
				if err := build(); err != nil {
					log.Error("rebuild failed", "path", path, "error", err)
				}
			})
		},
	}
	addRenderFlags(cmd)
	cmd.Flags().String("out", "", "file to write the rendered outline to (default stdout)")
	cmd.Flags().Duration("debounce", 100*time.Millisecond, "quiet period before re-rendering")
	return cmd
}

// watchFile calls onChange once writes to path settle for the debounce
// period. The parent directory is watched so that editors which save by
// renaming a temp file over path are followed. It returns when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, log *slog.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debug("document changed", "path", path, "op", ev.Op.String())
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "path", path, "error", err)
		case <-fire:
			onChange()
		}
	}
}
