// PaperBot collects the previous day's scholarly papers from public
// aggregator APIs, ranks them against a reader profile, and delivers a
// daily digest.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paperbot-dev/paperbot/internal/app"
	"github.com/paperbot-dev/paperbot/internal/feed"
	"github.com/paperbot-dev/paperbot/internal/scheduler"
)

var version = "dev"

func main() {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "paperbot",
		Short: "Daily scholarly paper aggregator and digest bot",
		Long: "PaperBot fetches yesterday's papers from OpenAlex, arXiv, PubMed and a dozen\n" +
			"other aggregators, deduplicates them, picks the most relevant ones for your\n" +
			"reader profile, and emails a digest.",
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "paperbot.yaml", "config file path")

	rootCmd.AddCommand(runCmd(&cfgPath))
	rootCmd.AddCommand(fetchCmd(&cfgPath))
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(digestCmd(&cfgPath))
	rootCmd.AddCommand(subscribeCmd(&cfgPath))
	rootCmd.AddCommand(unsubscribeCmd(&cfgPath))
	rootCmd.AddCommand(subscribersCmd(&cfgPath))
	rootCmd.AddCommand(serveCmd(&cfgPath))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openApp(cfgPath string) (*app.App, app.Config, error) {
	cfg, err := app.LoadConfig(cfgPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, cfg, err
	}
	return a, cfg, nil
}

func runCmd(cfgPath *string) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, rank, summarize, and deliver the daily digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.RunDay(cmd.Context(), targetDay(day))
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "target day YYYY-MM-DD (default: yesterday UTC)")
	return cmd
}

func fetchCmd(cfgPath *string) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and deduplicate one day's papers without ranking or delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.FetchDay(cmd.Context(), app.ResolveDay(targetDay(day)))
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Printf("%-12s %-12s %s\n", rec.Source, rec.Date, rec.Title)
			}
			fmt.Printf("\n%d records after dedup\n", len(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "target day YYYY-MM-DD (default: yesterday UTC)")
	return cmd
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the available sources in merge order",
		Run: func(cmd *cobra.Command, args []string) {
			for i, name := range feed.DefaultRegistry().Names() {
				fmt.Printf("%2d. %s\n", i+1, name)
			}
		},
	}
}

func digestCmd(cfgPath *string) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print a stored digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if day == "" {
				row, err := a.Store().GetLatestDigest(cmd.Context())
				if err != nil {
					return err
				}
				if row == nil {
					return fmt.Errorf("no digest stored yet")
				}
				fmt.Println(row.Markdown)
				return nil
			}
			row, err := a.Store().GetDigest(cmd.Context(), day)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("no digest for %s", day)
			}
			fmt.Println(row.Markdown)
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "digest day YYYY-MM-DD (default: latest)")
	return cmd
}

func subscribeCmd(cfgPath *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Add a digest email subscriber",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			a, _, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Store().AddSubscriber(cmd.Context(), email); err != nil {
				return fmt.Errorf("add subscriber: %w", err)
			}
			fmt.Printf("Subscribed: %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	return cmd
}

func unsubscribeCmd(cfgPath *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Remove a digest email subscriber",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			a, _, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Store().RemoveSubscriber(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Printf("Unsubscribed: %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	return cmd
}

func subscribersCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribers",
		Short: "List active digest subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			subs, err := a.Store().GetActiveSubscribers(cmd.Context())
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Println("No active subscribers.")
				return nil
			}
			fmt.Printf("Active subscribers (%d):\n", len(subs))
			for _, s := range subs {
				fmt.Printf("  %s (since %s)\n", s.Email, s.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the digest pipeline on a schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			interval, err := cfg.Interval()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := scheduler.New()
			sched.Add(scheduler.Job{
				Name: "daily-digest",
				Fn: func(ctx context.Context) error {
					return a.RunDay(ctx, "")
				},
			})
			sched.Start(ctx, interval)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("paperbot %s\n", version)
		},
	}
}

// targetDay prefers the flag, then the TARGET_DATE environment variable.
func targetDay(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("TARGET_DATE")
}
