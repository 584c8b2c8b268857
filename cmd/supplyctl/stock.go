package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/supply-bot/internal/domain/journal"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/inventory"
	"github.com/Spok95/supply-bot/internal/report"
)

const (
	actionAdd      = inventory.ActionAdd
	actionSubtract = inventory.ActionSubtract
)

// adjustCmd: add/subtract через тот же Store, что и бот: операция, затем перечитывание списка.
func (a *app) adjustCmd(action inventory.Action) *cobra.Command {
	var (
		colorID int64
		qty     string
		notes   string
	)
	short := "Add quantity to a color variant"
	if action == actionSubtract {
		short = "Subtract quantity from a color variant"
	}
	cmd := &cobra.Command{
		Use:   string(action) + " <supply-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			// проверка до любого запроса
			if !supplies.ValidateQuantity(qty) {
				return fmt.Errorf("invalid quantity %q: must be a number greater than 0", qty)
			}
			q, _ := supplies.ParseQuantity(qty)
			op := supplies.VariantQuantityOperation{ColorID: colorID, Quantity: q.InexactFloat64(), Notes: notes}

			st := inventory.New(a.client, a.log, nil, 0)
			defer st.Close()

			entry := journal.Entry{SupplyID: id, ColorID: colorID, Qty: op.Quantity, Note: notes, Source: journal.SourceCLI}
			if action == actionSubtract {
				entry.Type = journal.MoveSubtract
				err = st.SubtractQuantity(cmd.Context(), id, op)
			} else {
				entry.Type = journal.MoveAdd
				err = st.AddQuantity(cmd.Context(), id, op)
			}
			if err != nil {
				entry.Error = err.Error()
			}
			if jerr := a.record(cmd.Context(), entry); jerr != nil {
				a.log.Error("journal record failed", "err", jerr)
			}
			if err != nil {
				return err
			}

			snap := st.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, snap.SuccessMessage)
			for _, s := range snap.Supplies {
				if s.ID == id && s.ColorID == colorID {
					fmt.Fprintf(out, "%s: %s [%s]\n", s.Description, supplies.FormatStock(s.Stock), supplies.Status(s.Stock))
				}
			}
			if snap.Error != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "refresh failed: %s\n", snap.Error)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&colorID, "color", 0, "color id of the variant (required)")
	cmd.Flags().StringVarP(&qty, "qty", "q", "", "quantity, a number greater than 0 (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "optional note stored with the movement")
	_ = cmd.MarkFlagRequired("color")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func (a *app) lowStockCmd() *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "low-stock",
		Short: "Report supplies below a stock threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Inventory.LowStockThreshold
			}
			list, err := a.client.GetLowStock(cmd.Context(), threshold)
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", supplies.LowStockThreshold, "stock threshold")
	return cmd
}

func (a *app) movementsCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "movements <supply-id>",
		Short: "Show stock movement history of a supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page, err := a.client.GetMovements(cmd.Context(), id, limit, offset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range page.Movements {
				fmt.Fprintf(out, "%s\t%-8s\t%v\t%s\n", m.CreatedAt.Format(time.RFC3339), m.MovementType, m.Quantity, m.Notes)
			}
			fmt.Fprintf(out, "%d of %d movements\n", len(page.Movements), page.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		output   string
		search   string
		category string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export supplies to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := inventory.New(a.client, a.log, nil, 0)
			defer st.Close()
			if err := st.Refresh(cmd.Context()); err != nil {
				return err
			}
			st.SetSearchTerm(search)
			st.SetCategoryFilter(category)

			rows := st.Snapshot().Filtered
			data, err := report.SuppliesWorkbook(rows)
			if err != nil {
				return err
			}
			if output == "" {
				output = report.FileName(time.Now())
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default supplies_<timestamp>.xlsx)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "substring filter")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category filter")
	return cmd
}
