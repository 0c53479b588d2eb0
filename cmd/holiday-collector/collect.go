package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/cn-holiday-collector/internal/collector"
	"github.com/username/cn-holiday-collector/internal/config"
	"github.com/username/cn-holiday-collector/internal/daemon"
	"github.com/username/cn-holiday-collector/internal/govcn"
	"github.com/username/cn-holiday-collector/internal/store"
)

func collectCmd() *cobra.Command {
	var years []int
	var outputDir string

	cmd := &cobra.Command{
		Use:   "collect [year...]",
		Short: "Fetch, parse and save holiday notices",
		Long:  "Search gov.cn for each year's holiday notice, parse it, write holidays_{year}.json and update the index file. Years default to the current and next year.",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				y, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid year %q: %w", arg, err)
				}
				years = append(years, y)
			}
			if len(years) == 0 {
				years = defaultYears(time.Now().In(cfg.Daemon.GetLocation()))
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}
			return runCollect(cmd.Context(), cmd.OutOrStdout(), years)
		},
	}

	cmd.Flags().IntSliceVarP(&years, "years", "y", nil, "Years to collect (e.g. -y 2025,2026); positional years are added")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides output.dir)")

	return cmd
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Collect once a day at daemon.daily_time",
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, minute := cfg.Daemon.GetDailyTime()
			loc := cfg.Daemon.GetLocation()

			job := func(ctx context.Context) error {
				return runCollect(ctx, io.Discard, defaultYears(time.Now().In(loc)))
			}

			d := daemon.NewScheduledDaemon(job, hour, minute, loc, logger)
			return d.Start(cmd.Context())
		},
	}
}

func defaultYears(now time.Time) []int {
	return []int{now.Year(), now.Year() + 1}
}

// runCollect collects years and saves whatever succeeded. Years that yield
// no notices keep their previous file.
func runCollect(ctx context.Context, out io.Writer, years []int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.ValidateYears(years, time.Now()); err != nil {
		return err
	}

	client, err := govcn.NewClient(cfg.Source, logger)
	if err != nil {
		return err
	}

	logger.Info("Collecting holidays", zap.Ints("years", years))
	results, runErr := collector.New(client, newParser(), logger).Run(ctx, years)
	if runErr != nil {
		logger.Warn("Collection finished with errors", zap.Error(runErr))
	}

	st := store.New(cfg.Output.Dir, logger)
	saved := 0
	for _, year := range years {
		records := results[year]
		if len(records) == 0 {
			logger.Warn("No notices collected, keeping existing file", zap.Int("year", year))
			fmt.Fprintf(out, "%d: no notices collected\n", year)
			continue
		}
		path, err := st.SaveYear(year, records)
		if err != nil {
			return err
		}
		saved++
		fmt.Fprintf(out, "%d: %d notice(s) saved to %s\n", year, len(records), path)
	}

	if saved > 0 {
		files, err := st.ListFiles()
		if err != nil {
			return err
		}
		index := store.NewIndex(cfg.Output.IndexFile, logger)
		if err := index.Upsert(store.Item{
			Name:          cfg.Output.IndexName,
			Description:   cfg.Output.Description,
			DescriptionZh: cfg.Output.DescriptionZh,
			Path:          files,
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "Index %s updated with %d file(s)\n", cfg.Output.IndexFile, len(files))
	}

	if runErr != nil {
		return fmt.Errorf("some years could not be collected: %w", runErr)
	}
	return nil
}
