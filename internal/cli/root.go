package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/contextflow/internal/config"
	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/store"
	"github.com/sadopc/contextflow/internal/tracker"
	"github.com/sadopc/contextflow/internal/tui"
	"github.com/spf13/cobra"
)

// env is shared by every command of one invocation. The database is opened
// lazily so config commands work without one.
type env struct {
	dbPath string
	slot   string

	cfg     config.Config
	store   *store.Store
	tracker *tracker.Tracker
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "contextflow",
		Short: "Plan and run focused work sessions across life buckets",
		Long: `contextflow keeps one anchor, one sprint and one recovery in view each day,
gates tasks behind a next action and a done definition, and records a short
closeout after every session so the next one starts warm.

Run without arguments for the terminal UI.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTUI()
		},
	}
	root.PersistentFlags().StringVar(&e.dbPath, "db", "", "database path (overrides config)")
	root.PersistentFlags().StringVar(&e.slot, "slot", "", "snapshot slot (overrides config)")

	root.AddCommand(
		newBriefCmd(e),
		newStandupCmd(e),
		newCaptureCmd(e),
		newDumpCmd(e),
		newTaskCmd(e),
		newPlanCmd(e),
		newBucketsCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newConfigCmd(e),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	e := &env{}
	defer e.close()
	return newRootCmd(e).Execute()
}

func (e *env) loadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// open returns the tracker, opening the store on first use. An unreadable
// snapshot is logged and replaced by the seed; any other load failure is
// returned so the stored data is never overwritten.
func (e *env) open() (*tracker.Tracker, error) {
	if e.tracker != nil {
		return e.tracker, nil
	}
	path := e.dbPath
	if path == "" {
		path = e.cfg.DBPath
	}
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	st.UseSlot(e.cfg.Slot)
	st.UseSlot(e.slot)

	tr, err := tracker.New(st)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		st.Close()
		return nil, err
	}
	e.store, e.tracker = st, tr
	return tr, nil
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
		e.store, e.tracker = nil, nil
	}
}

func (e *env) runTUI() error {
	if e.cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(e.cfg.LogFile), 0o755); err == nil {
			f, err := tea.LogToFile(e.cfg.LogFile, "contextflow")
			if err == nil {
				defer f.Close()
			}
		}
	} else {
		log.SetOutput(io.Discard)
	}

	tr, err := e.open()
	if err != nil {
		return err
	}
	p := tea.NewProgram(tui.NewApp(tr, e.store), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// resolveBucket accepts a bucket ID or a case-insensitive name prefix.
func resolveBucket(snap flow.Snapshot, arg string) (flow.Bucket, error) {
	if b, ok := snap.Bucket(arg); ok {
		return b, nil
	}
	var matches []flow.Bucket
	for _, b := range snap.Buckets {
		if strings.HasPrefix(strings.ToLower(b.Name), strings.ToLower(arg)) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return flow.Bucket{}, fmt.Errorf("bucket %q: %w", arg, flow.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, b := range matches {
			names[i] = b.Name
		}
		return flow.Bucket{}, fmt.Errorf("bucket %q is ambiguous: %s", arg, strings.Join(names, ", "))
	}
}
