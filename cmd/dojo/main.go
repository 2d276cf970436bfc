package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dojo/internal/bootstrap"
	sessiondto "dojo/internal/modules/session/dto"
	watchdto "dojo/internal/modules/watch/dto"
	"dojo/internal/platform/config"
	apperrors "dojo/internal/platform/errors"
	"dojo/internal/platform/logging"
	"dojo/internal/ui/dashboard"
)

var errCheckFailed = errors.New("tests did not pass")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globals struct {
	kataRoot   string
	notesRoot  string
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "dojo",
		Short:         "Practice katas with a test-driven watch loop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.New(g.kataRoot, g.notesRoot, g.configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogPath, g.verbose)
			if err != nil {
				return err
			}
			g.cfg = cfg
			g.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&g.kataRoot, "root", "dojo", "kata root directory")
	root.PersistentFlags().StringVar(&g.notesRoot, "notes", "notes", "notes root directory")
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (defaults to <notes>/dojo.yaml)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newStartCmd(g),
		newResumeCmd(g),
		newWatchCmd(g),
		newCheckCmd(g),
		newLogCmd(g),
		newAbandonCmd(g),
		newStatusCmd(g),
		newHistoryCmd(g),
		newKataCmd(g),
		newReindexCmd(g),
		newGeneratorCmd(g),
	)
	return root
}

// withApp builds the application for one command and closes it afterwards.
func withApp(g *globals, fn func(app *bootstrap.App) error) error {
	app, err := bootstrap.New(g.cfg, g.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			g.logger.Warn("close app", zap.Error(err))
		}
	}()
	return fn(app)
}

func newStartCmd(g *globals) *cobra.Command {
	var idea, templateKind, pillar string
	var force bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Create a kata and open a session for it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Start(cmd.Context(), idea, templateKind, pillar, force)
				if err != nil {
					if errors.Is(err, apperrors.ErrActiveSessionExists) {
						return fmt.Errorf("%w (use --force to abandon it)", err)
					}
					return err
				}
				w := cmd.OutOrStdout()
				if out.Abandoned != "" {
					_, _ = fmt.Fprintf(w, "abandoned %s\n", out.Abandoned)
				}
				_, _ = fmt.Fprintf(w, "kata %s (%s, %s)\n", out.KataSlug, strings.Join(out.Pillars, ","), out.Difficulty)
				_, _ = fmt.Fprintf(w, "title: %s\nmission: %s\nworkspace: %s\nsource: %s\n", out.Title, out.Mission, out.Workspace, out.Source)
				_, _ = fmt.Fprintf(w, "next: dojo watch %s\n", out.KataSlug)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&idea, "idea", "", `kata idea, "Title -- mission"`)
	cmd.Flags().StringVar(&templateKind, "template", "", "workspace template: python-cli|http-service")
	cmd.Flags().StringVar(&pillar, "pillar", "", "skill pillar (defaults to the weakest)")
	cmd.Flags().BoolVar(&force, "force", false, "abandon the current session first")
	return cmd
}

func newResumeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <slug>",
		Short: "Make an existing kata the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Resume(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printSession(cmd, out)
				return nil
			})
		},
	}
}

func newWatchCmd(g *globals) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "watch [slug]",
		Short: "Run the tests on every change and log the first pass",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := ""
			if len(args) == 1 {
				slug = args[0]
			}
			if !plain {
				plain = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
			}
			return withApp(g, func(app *bootstrap.App) error {
				if slug == "" {
					active, err := app.SessionCLI.GetActive(cmd.Context())
					if err != nil {
						return err
					}
					slug = active.KataSlug
				}
				return bootstrap.RunWatch(cmd.Context(), app, slug, plain, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line output instead of the dashboard")
	return cmd
}

func newCheckCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check [slug]",
		Short: "Run the tests once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := ""
			if len(args) == 1 {
				slug = args[0]
			}
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.WatchCLI.Check(cmd.Context(), slug)
				if err != nil {
					return err
				}
				printCheck(cmd, out)
				if err := out.Verdict.Err(); err != nil {
					return fmt.Errorf("%w: %w", errCheckFailed, err)
				}
				return nil
			})
		},
	}
}

func newLogCmd(g *globals) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "log <slug> --note <text>",
		Short: "Record a manual log entry for a kata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(note) == "" {
				return fmt.Errorf("--note is required")
			}
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Log(cmd.Context(), args[0], note)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if out.Entry != nil {
					_, _ = fmt.Fprintf(w, "logged %s: +%d xp (%s)\n", out.Session.KataSlug, out.Entry.XPAwarded, out.Entry.QualityTier)
				}
				printLevelUps(cmd, out.LevelUps)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "log note")
	return cmd
}

func newAbandonCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "abandon",
		Short: "Abandon the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Abandon(cmd.Context())
				if err != nil {
					return err
				}
				if !out.Abandoned {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no open session")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "abandoned %s\n", out.KataSlug)
				return nil
			})
		},
	}
}

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show XP, levels and the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				snap, err := app.ProgressCLI.Status(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "total xp %d, %d katas completed\n", snap.Summary.TotalXP, snap.Summary.Completed)
				for _, p := range snap.Summary.Pillars {
					next := "max"
					if p.NextLevel != "" {
						next = fmt.Sprintf("%s at %d", p.NextLevel, p.NextXP)
					}
					_, _ = fmt.Fprintf(w, "%-20s %5d xp  %-11s next: %s\n", p.Pillar, p.XP, p.Level, next)
				}
				if snap.ActiveSlug != "" {
					_, _ = fmt.Fprintf(w, "active: %s\n", snap.ActiveSlug)
				}
				_, _ = fmt.Fprintf(w, "suggested: %s (%s)\n", snap.Suggested.Pillar, snap.Suggested.Difficulty)
				return nil
			})
		},
	}
}

func newHistoryCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent log entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				entries, err := app.ProgressCLI.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no log entries")
					return nil
				}
				for _, e := range entries {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t+%d\t%s\n", e.Timestamp.Format("2006-01-02 15:04"), e.KataSlug, e.QualityTier, e.XPAwarded, e.Note)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum entries to show")
	return cmd
}

func newKataCmd(g *globals) *cobra.Command {
	kata := &cobra.Command{Use: "kata", Short: "Kata catalog commands"}
	kata.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known katas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				katas, err := app.KataCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(katas) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no katas")
					return nil
				}
				for _, k := range katas {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", k.Slug, k.Title, strings.Join(k.Pillars, ","), k.Difficulty)
				}
				return nil
			})
		},
	})
	return kata
}

func newReindexCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite kata index from KATA.md notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				n, err := app.KataCLI.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d katas\n", n)
				return nil
			})
		},
	}
}

func newGeneratorCmd(g *globals) *cobra.Command {
	generator := &cobra.Command{Use: "generator", Short: "Content generator commands"}
	generator.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				results, err := app.GeneratorCLI.Doctor(cmd.Context())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
					return nil
				}
				failed := false
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						failed = true
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				if failed {
					return fmt.Errorf("plugin doctor found problems")
				}
				return nil
			})
		},
	})
	return generator
}

func printSession(cmd *cobra.Command, s sessiondto.SessionOutput) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s kata=%s status=%s workspace=%s\n", s.ID, s.KataSlug, s.Status, s.Workspace)
}

func printCheck(cmd *cobra.Command, out watchdto.CheckOutput) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, dashboard.FormatVerdict(out.Verdict))
	if out.Recorded {
		_, _ = fmt.Fprintf(w, "+%d xp (%s)\n", out.XPAwarded, out.Tier)
	}
	for _, up := range out.LevelUps {
		_, _ = fmt.Fprintf(w, "level up %s\n", up)
	}
	if out.Hint != "" {
		_, _ = fmt.Fprintf(w, "hint: %s\n", out.Hint)
	}
}

func printLevelUps(cmd *cobra.Command, ups []sessiondto.LevelUp) {
	for _, up := range ups {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "level up %s: %s -> %s\n", up.Pillar, up.From, up.To)
	}
}
