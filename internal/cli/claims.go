package cli

import (
	"fmt"

	"github.com/rvachev/tierwatch/internal/model"
	"github.com/spf13/cobra"
)

var claimsStatus string

// claimsCmd represents the claims command
var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "List claims by lifecycle status",
	Long: `Claims lists tracked assertions. Anything not confirmed or debunked
is labeled UNVERIFIED; triage is the review queue for fresh claims.

Example:
  tierwatch claims --status triage
  tierwatch claims --status confirmed`,
	RunE: runClaims,
}

func init() {
	rootCmd.AddCommand(claimsCmd)
	claimsCmd.Flags().StringVar(&claimsStatus, "status", "triage", "status filter (new, triage, corroborating, confirmed, debunked, stale)")
}

func runClaims(cmd *cobra.Command, args []string) error {
	status := model.ClaimStatus(claimsStatus)
	switch status {
	case model.StatusNew, model.StatusTriage, model.StatusCorroborating,
		model.StatusConfirmed, model.StatusDebunked, model.StatusStale:
	default:
		return fmt.Errorf("unknown status %q", claimsStatus)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	claims, err := st.ClaimsByStatus(status)
	if err != nil {
		return err
	}
	if len(claims) == 0 {
		fmt.Printf("No claims with status %s\n", status)
		return nil
	}

	for i := range claims {
		cl := &claims[i]
		fmt.Printf("%s  [%-10s] cred %3d  %-12s %-20s %s\n",
			cl.CreatedAt.Format("2006-01-02"), cl.DisplayStatus(), cl.Credibility,
			cl.Entity, cl.Category, cl.Text)
		if cl.ConfirmedBy != "" {
			fmt.Printf("            confirmed by event %s (confidence %.0f%%)\n", cl.ConfirmedBy, cl.Confidence*100)
		}
		if cl.DebunkedBy != "" {
			fmt.Printf("            debunked by event %s\n", cl.DebunkedBy)
		}
	}
	fmt.Printf("\n%d claims\n", len(claims))
	return nil
}
