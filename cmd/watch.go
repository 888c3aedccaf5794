package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/dmdoc/internal/docsource"
	"github.com/zjrosen/dmdoc/internal/domain/dm"
	"github.com/zjrosen/dmdoc/internal/log"
	"github.com/zjrosen/dmdoc/internal/presentation"
	"github.com/zjrosen/dmdoc/internal/pubsub"
	"github.com/zjrosen/dmdoc/internal/watcher"
	"github.com/zjrosen/dmdoc/internal/xref"
)

var watchStrict bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Rebuild incrementally whenever sources change",
	Long: `Run a full build, then watch the sources. Each batch of changed files
evicts the affected documents, registers them again and re-resolves every
reference. Stop with Ctrl-C.

Examples:
  dmdoc watch
  dmdoc watch docs --strict`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchStrict, "strict", false, "reject a path declared by two documents")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	roots := sourceRoots(cfg, args)
	loader := docsource.NewLoader(cfg.Extensions)

	docs, err := loader.LoadDirs(roots)
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}

	builder := xref.New(builderOptions(cfg, watchStrict))
	defer builder.Close()

	report, err := builder.Build(ctx, docs)
	if err != nil {
		return err
	}
	formatter := presentation.NewFormatter(out)
	if err := formatter.FormatSummary(report); err != nil {
		return err
	}

	// Warnings go to the log file when one is configured; mirror them here.
	mirroring := false
	if cfg.Log.Path != "" {
		if lines := log.Subscribe(ctx); lines != nil {
			go mirrorLog(cmd.ErrOrStderr(), lines)
			mirroring = true
		}
	}
	var dropped int64

	w, err := watcher.New(watcher.Config{
		Roots:       roots,
		Match:       loader.Matches,
		DebounceDur: cfg.Watch.Debounce,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	batches, err := w.Start()
	if err != nil {
		return err
	}
	log.Info(log.CatWatcher, "Watching sources", "roots", roots)

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-batches:
			changed, removed := applyChanges(loader, batch)
			report, err := builder.Rebuild(ctx, changed, removed)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if err := formatter.FormatSummary(report); err != nil {
				return err
			}
			if mirroring {
				reportDropped(cmd.ErrOrStderr(), &dropped)
			}
		}
	}
}

// applyChanges loads the changed files of batch. Files that can no longer be
// read are treated as removed.
func applyChanges(loader *docsource.Loader, batch []watcher.Change) ([]*docsource.Document, []dm.DocID) {
	var (
		changed []*docsource.Document
		removed []dm.DocID
	)
	for _, c := range batch {
		prefix := docsource.RootPrefix(c.Root)
		if c.Removed {
			removed = append(removed, loader.DocID(prefix, c.Rel))
			continue
		}
		doc, err := loader.LoadFile(os.DirFS(c.Root), prefix, c.Rel)
		if err != nil {
			log.Warn(log.CatWatcher, "Treating unreadable source as removed", "file", c.Rel, "error", err)
			removed = append(removed, loader.DocID(prefix, c.Rel))
			continue
		}
		changed = append(changed, doc)
	}
	return changed, removed
}

// reportDropped notes the log lines the terminal mirror missed since the last call.
func reportDropped(w io.Writer, seen *int64) {
	n := log.Dropped()
	if n <= *seen {
		return
	}
	_, _ = fmt.Fprintf(w, "%d log lines dropped\n", n-*seen)
	*seen = n
}

func mirrorLog(w io.Writer, lines <-chan pubsub.Event[string]) {
	for ev := range lines {
		_, _ = io.WriteString(w, ev.Payload)
	}
}
