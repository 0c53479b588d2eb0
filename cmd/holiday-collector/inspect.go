package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/username/cn-holiday-collector/internal/calendar"
	"github.com/username/cn-holiday-collector/internal/store"
	"github.com/username/cn-holiday-collector/pkg/dateutil"
)

func parseCmd() *cobra.Command {
	var file string
	var year int

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a saved notice and print the holidays as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			var text []byte
			var err error
			if file == "-" {
				text, err = io.ReadAll(cmd.InOrStdin())
			} else {
				text, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("failed to read notice: %w", err)
			}

			if year == 0 {
				year = time.Now().Year()
			}

			result := newParser().Parse(string(text), year)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Notice text file, - for stdin")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Year the notice is for (default: current year)")

	return cmd
}

func checkCmd() *cobra.Command {
	var dateStr string
	var month bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show how a date is treated according to collected data",
		RunE: func(cmd *cobra.Command, args []string) error {
			date := dateutil.CivilDate(dateutil.TodayIn(cfg.Daemon.GetLocation()))
			if dateStr != "" {
				var err error
				date, err = dateutil.ParseISODate(dateStr)
				if err != nil {
					return err
				}
			}

			cal := calendar.NewCompositeCalendar(
				calendar.NewFileCalendar(store.New(cfg.Output.Dir, logger), logger),
				calendar.NewWeekendCalendar(),
				logger,
			)
			out := cmd.OutOrStdout()

			if month {
				info, err := cal.GetMonthInfo(date.Year(), date.Month())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d-%02d: %d workday(s) (%d transferred), %d weekend day(s), %d holiday(s)\n",
					info.Year, info.Month, info.WorkDays, info.TransferredWorkdays, info.Weekends, info.Holidays)
				for _, day := range info.Days {
					printDay(out, &day)
				}
				return nil
			}

			info, err := cal.GetDayInfo(date)
			if err != nil {
				return err
			}
			printDay(out, info)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "Date to check, YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVarP(&month, "month", "m", false, "Show the whole month")

	return cmd
}

func printDay(out io.Writer, day *calendar.DayInfo) {
	line := fmt.Sprintf("%s %s %s", day.Date.Format(dateutil.ISODate), day.Date.Format("Mon"), day.Type)
	if day.Holiday != "" {
		line += " " + day.Holiday
	}
	fmt.Fprintln(out, line)
}
