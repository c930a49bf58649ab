package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rvachev/tierwatch/internal/llm"
	"github.com/rvachev/tierwatch/internal/model"
	"github.com/rvachev/tierwatch/internal/risk"
	"github.com/spf13/cobra"
)

var (
	scoreAsOf    string
	scoreEntity  string
	scoreSave    bool
	scoreHistory bool
	scoreBrief   bool
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute the composite systemic-risk score",
	Long: `Score computes the three stress sub-scores and the composite risk
number from verified facts and confirmed claims. The computation is a pure
function of history at the chosen as-of instant: facts ingested later never
change a past score.

Example:
  tierwatch score
  tierwatch score --as-of 2026-08-15 --save
  tierwatch score --entity JPM
  tierwatch score --history
  tierwatch score --brief`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreAsOf, "as-of", "", "compute at this instant (YYYY-MM-DD or RFC3339, default now)")
	scoreCmd.Flags().StringVar(&scoreEntity, "entity", "", "scope the score to one entity (default market-wide)")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "persist the score snapshot")
	scoreCmd.Flags().BoolVar(&scoreHistory, "history", false, "list saved score snapshots")
	scoreCmd.Flags().BoolVar(&scoreBrief, "brief", false, "generate an LLM narrative brief (requires OPENAI_API_KEY)")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if scoreHistory {
		history, err := st.ScoreHistory(30)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Println("No saved scores")
			return nil
		}
		for _, sc := range history {
			cascade := " "
			if sc.Cascade {
				cascade = "C"
			}
			fmt.Printf("%s  %5.2f %-8s %s  F:%3d E:%3d D:%3d\n",
				sc.AsOf.Format("2006-01-02 15:04"), sc.Composite, sc.Label, cascade,
				sc.FundingStress, sc.EnforcementHeat, sc.DeliverabilityStress)
		}
		return nil
	}

	asOf := time.Now().UTC()
	if scoreAsOf != "" {
		if asOf, err = parseDay(scoreAsOf); err != nil {
			return err
		}
	}

	engine := risk.NewEngine(st)
	var score model.RiskScore
	if scoreEntity != "" {
		score, err = engine.ComputeEntityScores(asOf, scoreEntity, cfg)
	} else {
		score, err = engine.ComputeScores(asOf, cfg)
	}
	if err != nil {
		return err
	}

	if scoreEntity != "" {
		fmt.Printf("Entity %s, as of %s\n\n", scoreEntity, score.AsOf.Format(time.RFC3339))
	} else {
		fmt.Printf("As of %s\n\n", score.AsOf.Format(time.RFC3339))
	}
	fmt.Printf("  Funding stress:        %3d/100\n", score.FundingStress)
	fmt.Printf("  Enforcement heat:      %3d/100\n", score.EnforcementHeat)
	fmt.Printf("  Deliverability stress: %3d/100\n", score.DeliverabilityStress)
	fmt.Printf("\n  Composite: %.2f / 10  ->  %s\n", score.Composite, score.Label)
	if score.Cascade {
		fmt.Println("  CASCADE: multiple stress dimensions elevated")
	}
	if score.Degraded {
		fmt.Println("  (degraded confidence: a dimension had no data and defaulted to neutral)")
	}

	if scoreSave {
		if scoreEntity != "" {
			// History is market-wide, keyed by as_of
			return fmt.Errorf("--save cannot be combined with --entity")
		}
		if err := st.SaveScore(score); err != nil {
			return err
		}
		fmt.Println("\nSaved snapshot")
	}

	if scoreBrief {
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return err
		}
		confirmed, err := st.ConfirmedClaimsAsOf(asOf)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		brief, err := llm.NewBriefer(provider).GenerateBrief(ctx, score, confirmed)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(brief)
	}

	return nil
}
