package e1epack

import (
	"context"
	"fmt"

	"github.com/TouchController/E1epack/internal/version"
	"github.com/TouchController/E1epack/pkg/build"
	"github.com/TouchController/E1epack/pkg/packs"
	"github.com/TouchController/E1epack/pkg/watch"
	"github.com/TouchController/E1epack/pkg/worker"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// packNamesCompletion completes pack ids not yet on the command line
func packNamesCompletion(g *globals) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := g.loadConfig()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		all, err := packs.Discover(cfg.PacksDir())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		given := map[string]bool{}
		for _, a := range args {
			given[packs.NormalizePackName(a)] = true
		}
		var available []string
		for _, id := range packs.IDs(all) {
			if !given[id] {
				available = append(available, id)
			}
		}
		return available, cobra.ShellCompDirectiveNoFileComp
	}
}

func newBuildCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:               "build [packs...]",
		Short:             MsgBuildShort,
		Long:              MsgBuildLong,
		Example:           MsgBuildExample,
		GroupID:           "core",
		ValidArgsFunction: packNamesCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := g.builder()
			if err != nil {
				return err
			}

			log.Info().
				Str("root", b.Config.Root).
				Bool("dry_run", g.dryRun).
				Strs("packs", args).
				Msg("Building packs")

			report, err := b.Run(cmd.Context(), build.Options{Packs: args, DryRun: g.dryRun})
			if err != nil {
				return err
			}

			r, err := renderer(cmd, asJSON)
			if err != nil {
				return err
			}
			return r.RenderReport(report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, MsgFlagJSON)
	return cmd
}

func newListCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:               "list [packs...]",
		Short:             MsgListShort,
		Long:              MsgListLong,
		GroupID:           "core",
		ValidArgsFunction: packNamesCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			plan, err := build.New(cfg, nil).Plan(cmd.Context(), build.Options{Packs: args, DryRun: true})
			if err != nil {
				return err
			}

			r, err := renderer(cmd, asJSON)
			if err != nil {
				return err
			}
			return r.RenderPlan(plan)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, MsgFlagJSON)
	return cmd
}

func newValidateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		Short:   MsgValidateShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			all, err := packs.Discover(cfg.PacksDir())
			if err != nil {
				return err
			}
			if err := packs.ValidateAll(all); err != nil {
				return err
			}
			for _, p := range all {
				if err := p.CheckJSON(cfg.Build.Ignore); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), MsgPacksValid, len(all))
			return err
		},
	}
}

func newWatchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:               "watch [packs...]",
		Short:             MsgWatchShort,
		Long:              MsgWatchLong,
		GroupID:           "core",
		ValidArgsFunction: packNamesCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := g.builder()
			if err != nil {
				return err
			}
			r, err := renderer(cmd, false)
			if err != nil {
				return err
			}

			cfg := b.Config
			w := watch.New(cfg.PacksDir(), cfg.Watch.Debounce, cfg.OutputDir(), cfg.WorkDir())
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), MsgWatchingFormat, cfg.PacksDir()); err != nil {
				return err
			}

			return w.Run(cmd.Context(), func(ctx context.Context) error {
				report, err := b.Run(ctx, build.Options{Packs: args, DryRun: g.dryRun})
				if err != nil {
					_ = r.RenderError(err)
					return err
				}
				return r.RenderReport(report)
			})
		},
	}
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:                worker.SubcommandName,
		Short:              MsgWorkerShort,
		Hidden:             true,
		DisableFlagParsing: true,
		// Serve sets up its own stderr-only logging
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := worker.Serve(cmd.Context(), args, cmd.OutOrStdout(), cmd.ErrOrStderr()); code != worker.ExitOK {
				return &ExitCodeError{Code: code}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.String())
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf(MsgUnknownShell, args[0])
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   MsgManTitle,
				Section: MsgManSection,
				Source:  MsgManSource + version.Version,
				Manual:  MsgManManual,
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
