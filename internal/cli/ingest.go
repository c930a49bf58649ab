package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rvachev/tierwatch/internal/intake"
	"github.com/rvachev/tierwatch/internal/model"
	"github.com/spf13/cobra"
)

var ingestTimeout time.Duration

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <items.jsonl>",
	Short: "Ingest a batch of fetched items",
	Long: `Ingest reads already-fetched items (one JSON object per line, as
delivered by a collector) and runs them through the engine:
- Resolve each item's source against the configured trust-tier table
- Tier 1 items become facts, tier 3 become claims, tier 2 both
- New facts are checked against open claims for confirmation or debunking
- New claims are scored for credibility and checked against existing facts

Unknown-source and malformed items are dropped and logged, never retried.

Example:
  tierwatch ingest items.jsonl
  tierwatch ingest items.jsonl --db risk.db -v`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 5*time.Minute, "overall ingest timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no sources configured; add a sources section to the config file")
	}

	items, err := readItems(args[0])
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no items in %s", args[0])
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	runner := intake.NewRunner(cfg, st)
	summary := runner.Run(ctx, items)

	fmt.Printf("Ingested %d items: %d facts, %d claims (%d cross-source merges), %d corroborations\n",
		summary.Items, summary.Events, summary.Claims, summary.Merged, summary.Corroborations)
	if summary.Dropped > 0 {
		fmt.Printf("Dropped: %d (unknown source or malformed)\n", summary.Dropped)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d items failed; re-drive them from the collector", summary.Failed)
	}
	return nil
}

// readItems parses a JSONL file of raw items.
func readItems(path string) ([]model.RawItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items file: %w", err)
	}
	defer f.Close()

	var items []model.RawItem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var item model.RawItem
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("parse item at line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read items file: %w", err)
	}
	return items, nil
}
