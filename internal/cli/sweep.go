package cli

import (
	"fmt"

	"github.com/rvachev/tierwatch/internal/lifecycle"
	"github.com/spf13/cobra"
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a claim evaluation pass",
	Long: `Sweep runs one time-driven evaluation pass over all open claims:
- Fresh claims advance through triage toward corroboration
- Time-bound claims past their deadline are debunked
- Claims past the staleness window with no match go stale

Stale, confirmed and debunked are terminal: a sweep never moves a claim out
of them. Run this periodically (e.g. from cron).`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	manager := lifecycle.NewManager(st)

	// Advance pass: one forward step per claim, before time-based retirement
	open, err := st.NonTerminalClaims()
	if err != nil {
		return err
	}
	advanced := 0
	for i := range open {
		cl := &open[i]
		if err := manager.Advance(cl.ID, cl.Credibility, cfg); err != nil {
			return err
		}
		advanced++
	}

	debunked, staled, err := manager.Sweep(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Evaluated %d open claims: %d past deadline (debunked), %d stale\n",
		advanced, debunked, staled)
	return nil
}
