package e1epack

import (
	"fmt"

	"github.com/TouchController/E1epack/internal/version"
	"github.com/TouchController/E1epack/pkg/build"
	"github.com/TouchController/E1epack/pkg/config"
	"github.com/TouchController/E1epack/pkg/logging"
	"github.com/TouchController/E1epack/pkg/paths"
	"github.com/TouchController/E1epack/pkg/ui"
	"github.com/spf13/cobra"
)

// EnvRoot selects the project root when --root is not given
const EnvRoot = paths.EnvRoot

// ExitCodeError makes the process exit with Code without printing anything
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf(MsgWorkerExitError, e.Code)
}

// globals holds the persistent flags
type globals struct {
	verbosity  int
	dryRun     bool
	root       string
	configFile string
}

func (g *globals) loadConfig() (*config.Config, error) {
	root, err := paths.FindRoot(g.root)
	if err != nil {
		return nil, err
	}
	return config.Load(config.LoadOptions{
		Root: root.Path,
		File: g.configFile,
	})
}

// builder loads the configuration and creates a builder with its worker
func (g *globals) builder() (*build.Builder, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	w, err := build.NewWorker(cfg, g.verbosity)
	if err != nil {
		return nil, err
	}
	return build.New(cfg, w), nil
}

func renderer(cmd *cobra.Command, asJSON bool) (ui.Renderer, error) {
	format := ui.FormatAuto
	if asJSON {
		format = ui.FormatJSON
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "e1epack",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			logging.LogCommand(cmd.CommandPath(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&g.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&g.root, "root", "", MsgFlagRoot)
	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", MsgFlagConfig)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.AddCommand(newBuildCmd(g))
	rootCmd.AddCommand(newListCmd(g))
	rootCmd.AddCommand(newValidateCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newWorkerCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}
