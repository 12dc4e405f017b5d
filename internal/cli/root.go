package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resume-studio/internal/app"
	"resume-studio/internal/config"
	"resume-studio/internal/logger"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
	headColor = color.New(color.FgCyan, color.Bold)
)

// runtime is the state shared by the subcommands of one invocation.
type runtime struct {
	configPath string
	app        *app.App
}

// NewRootCmd builds the resumectl command tree.
func NewRootCmd(version string) *cobra.Command {
	rt := &runtime{}
	root := &cobra.Command{
		Use:     "resumectl",
		Short:   "Edit, paginate and export a single resume",
		Version: version,
		Long: `resumectl works on the one resume held in the configured store.

Every command loads the stored record, applies its change and saves it
before exiting. Page breaks can be forced before any section or before any
experience entry; every export format honours them.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "config file (default ./config.yaml or $HOME/.resume-studio/config.yaml)")

	root.AddCommand(
		showCmd(rt),
		validateCmd(),
		importCmd(rt),
		exportCmd(rt),
		previewCmd(rt),
		breakCmd(rt),
		roleCmd(rt),
		resetCmd(rt),
		mcpCmd(rt, version),
	)
	return root
}

// open loads config and the session; the returned func saves and closes.
func (rt *runtime) open(ctx context.Context) (*app.App, func() error, error) {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, log.Named("resumectl"))
	if err != nil {
		return nil, nil, err
	}
	rt.app = a
	done := func() error {
		if err := a.Close(context.Background()); err != nil {
			a.Log.Warn("close failed", zap.Error(err))
			return fmt.Errorf("saving resume: %w", err)
		}
		return nil
	}
	return a, done, nil
}

func printOK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", okColor.Sprint("✓"), fmt.Sprintf(format, args...))
}

// closeInto runs done and keeps its error unless err is already set.
func closeInto(err *error, done func() error) {
	if cerr := done(); cerr != nil && *err == nil {
		*err = cerr
	}
}
