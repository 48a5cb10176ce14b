package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"room-reservation/internal/storage"
)

var (
	logLimit  int
	logActor  string
	logAction string
	logSearch string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the access log",
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List access log entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogger()

		entries, err := provider.ListAccessLog(cmd.Context(), storage.AccessLogFilter{
			ActorType: storage.ActorType(strings.ToUpper(logActor)),
			Action:    storage.Action(strings.ToUpper(logAction)),
			Search:    logSearch,
			Limit:     logLimit,
		})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		loc := cfg.Location()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTOR\tACTION\tUSERNAME\tRUT\tCAREER\tDETAIL")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.CreatedAt.In(loc).Format(time.DateTime), e.ActorType, e.Action,
				orDash(e.Username), orDash(e.RUT), orDash(e.Career), orDash(e.Detail))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logListCmd)

	logListCmd.Flags().IntVar(&logLimit, "limit", 50, "maximum number of entries, 0 for all")
	logListCmd.Flags().StringVar(&logActor, "type", "", "actor type: admin, student or guest")
	logListCmd.Flags().StringVar(&logAction, "action", "", "action: login, logout or reservation")
	logListCmd.Flags().StringVarP(&logSearch, "search", "q", "", "search username, RUT, career and detail")
}
