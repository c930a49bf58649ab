package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	factsSince string
	factsUntil string
)

// factsCmd represents the facts command
var factsCmd = &cobra.Command{
	Use:   "facts <entity>",
	Short: "List verified facts for an entity",
	Long: `Facts lists events from the append-only fact ledger for an entity,
optionally bounded by time.

Example:
  tierwatch facts JPM
  tierwatch facts COMEX --since 2026-08-01 --until 2026-08-31`,
	Args: cobra.ExactArgs(1),
	RunE: runFacts,
}

func init() {
	rootCmd.AddCommand(factsCmd)
	factsCmd.Flags().StringVar(&factsSince, "since", "", "start date (YYYY-MM-DD)")
	factsCmd.Flags().StringVar(&factsUntil, "until", "", "end date (YYYY-MM-DD)")
}

func runFacts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	from := time.Time{}
	to := time.Now().UTC()
	if factsSince != "" {
		if from, err = parseDay(factsSince); err != nil {
			return err
		}
	}
	if factsUntil != "" {
		if to, err = parseDay(factsUntil); err != nil {
			return err
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	events, err := st.EventsByEntity(args[0], from, to)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Printf("No facts for %s in range\n", args[0])
		return nil
	}

	for _, ev := range events {
		fmt.Printf("%s  %-24s %-18s %s\n",
			ev.ObservedAt.Format("2006-01-02 15:04"), ev.Category, ev.Source, ev.Headline)
	}
	fmt.Printf("\n%d facts\n", len(events))
	return nil
}

// parseDay parses a YYYY-MM-DD date, or RFC3339 as a fallback.
func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC3339)", s)
	}
	return t.UTC(), nil
}
