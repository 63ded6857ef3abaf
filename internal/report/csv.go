// Package report writes simulation output to CSV for offline analysis.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"mmprofiler/internal/domain"
)

// Places is the decimal precision of every numeric CSV cell. Fixed-point
// output keeps diffs between runs readable.
const Places = 8

func cell(v float64) string {
	return decimal.NewFromFloat(v).Round(Places).String()
}

// WriteSnapshots streams per-step observations as CSV. Empty book sides
// render as empty cells rather than zeros.
func WriteSnapshots(w io.Writer, snapshots []domain.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "price", "best_bid", "best_ask", "cash", "asset", "target_delta"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, s := range snapshots {
		bid, ask := "", ""
		if s.HasBid {
			bid = cell(s.BestBid)
		}
		if s.HasAsk {
			ask = cell(s.BestAsk)
		}
		row := []string{cell(s.Time), cell(s.Price), bid, ask, cell(s.Cash), cell(s.Asset), cell(s.TargetDelta)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing snapshot row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTransactions streams the fill log as CSV.
func WriteTransactions(w io.Writer, txs []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "price", "quantity"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write([]string{cell(tx.Time), cell(tx.Price), cell(tx.Quantity)}); err != nil {
			return fmt.Errorf("writing transaction row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResults streams Monte Carlo run summaries as CSV.
func WriteResults(w io.Writer, results []domain.RunResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "seed", "final_price", "cash", "asset", "num_tx", "pnl"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range results {
		row := []string{r.Label, fmt.Sprintf("%d", r.Seed), cell(r.FinalPrice), cell(r.Cash), cell(r.Asset), fmt.Sprintf("%d", r.NumTx), cell(r.PnL)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing result row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// saveFile creates dir if needed and streams one report into dir/name.
func saveFile(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return "", err
	}
	return path, nil
}

// SaveResults writes run summaries to a file under dir, creating the
// directory if needed.
func SaveResults(dir, name string, results []domain.RunResult) (string, error) {
	return saveFile(dir, name, func(w io.Writer) error {
		return WriteResults(w, results)
	})
}

// SaveSnapshots writes a per-step observation series to a file under dir.
func SaveSnapshots(dir, name string, snapshots []domain.Snapshot) (string, error) {
	return saveFile(dir, name, func(w io.Writer) error {
		return WriteSnapshots(w, snapshots)
	})
}

// SaveTransactions writes a fill log to a file under dir.
func SaveTransactions(dir, name string, txs []domain.Transaction) (string, error) {
	return saveFile(dir, name, func(w io.Writer) error {
		return WriteTransactions(w, txs)
	})
}
