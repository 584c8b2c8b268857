package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Spok95/supply-bot/internal/backend"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
)

func printTable(w io.Writer, list []supplies.Supply) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOLOR\tDESCRIPTION\tCATEGORY\tSTOCK\tUOM\tSTATUS")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.ColorID, s.Description, s.Type.Category.Name,
			supplies.FormatStock(s.Stock), s.Unit.Code, supplies.Status(s.Stock))
	}
	return tw.Flush()
}

func (a *app) listCmd() *cobra.Command {
	var (
		search   string
		category string
		filter   backend.ListFilter
		summary  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supplies, one row per color variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client.ListSupplies(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if category == "" {
				category = supplies.AllCategories
			}
			list = supplies.Apply(list, search, category)
			if err := printTable(cmd.OutOrStdout(), list); err != nil {
				return err
			}
			if summary {
				sum := supplies.Summarize(list)
				fmt.Fprintf(cmd.OutOrStdout(), "\ntotal=%d active=%d with_stock=%d low_stock=%d out_of_stock=%d\n",
					sum.Total, sum.Active, sum.WithStock, sum.LowStock, sum.OutOfStock)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "substring match on description, color, type or category")
	cmd.Flags().StringVarP(&category, "category", "c", "", "exact category name (case-insensitive)")
	cmd.Flags().StringVar(&filter.Description, "description", "", "server-side description filter")
	cmd.Flags().Int64Var(&filter.TypeID, "type-id", 0, "server-side supply type filter")
	cmd.Flags().Int64Var(&filter.ColorID, "color-id", 0, "server-side color filter")
	cmd.Flags().BoolVar(&summary, "summary", false, "print summary counts after the table")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <supply-id>",
		Short: "Show one supply and its current stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.client.GetSupply(cmd.Context(), id)
			if err != nil {
				return err
			}
			stock, err := a.client.GetStock(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %d\n", s.ID)
			fmt.Fprintf(out, "Description: %s\n", s.Description)
			fmt.Fprintf(out, "Color:       %s (%d)\n", s.Color.Name, s.ColorID)
			fmt.Fprintf(out, "Type:        %s (%d)\n", s.Type.Name, s.TypeID)
			fmt.Fprintf(out, "Category:    %s\n", s.Type.Category.Name)
			fmt.Fprintf(out, "Unit:        %s (%s)\n", s.Unit.Code, s.Unit.Description)
			fmt.Fprintf(out, "Active:      %t\n", s.Active)
			fmt.Fprintf(out, "Stock:       %s [%s]\n", supplies.FormatStock(stock), supplies.Status(stock))
			return nil
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	var data supplies.CreateSupplyData
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a supply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.client.CreateSupply(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created supply %d: %s\n", s.ID, s.Description)
			return nil
		},
	}
	cmd.Flags().StringVar(&data.Description, "description", "", "supply description (required)")
	cmd.Flags().Int64Var(&data.ColorID, "color-id", 0, "color id (required)")
	cmd.Flags().Int64Var(&data.TypeID, "type-id", 0, "supply type id (required)")
	cmd.Flags().Int64Var(&data.MeasuringUoMID, "uom-id", 0, "unit of measure id (required)")
	for _, f := range []string{"description", "color-id", "type-id", "uom-id"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var (
		description string
		colorID     int64
		typeID      int64
		uomID       int64
	)
	cmd := &cobra.Command{
		Use:   "update <supply-id>",
		Short: "Update the given fields of a supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			// уходят только явно заданные флаги
			var data supplies.UpdateSupplyData
			flags := cmd.Flags()
			if flags.Changed("description") {
				data.Description = &description
			}
			if flags.Changed("color-id") {
				data.ColorID = &colorID
			}
			if flags.Changed("type-id") {
				data.TypeID = &typeID
			}
			if flags.Changed("uom-id") {
				data.MeasuringUoMID = &uomID
			}
			if data == (supplies.UpdateSupplyData{}) {
				return fmt.Errorf("nothing to update: pass at least one of --description, --color-id, --type-id, --uom-id")
			}
			s, err := a.client.UpdateSupply(cmd.Context(), id, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated supply %d: %s\n", s.ID, s.Description)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().Int64Var(&colorID, "color-id", 0, "new color id")
	cmd.Flags().Int64Var(&typeID, "type-id", 0, "new supply type id")
	cmd.Flags().Int64Var(&uomID, "uom-id", 0, "new unit of measure id")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <supply-id>",
		Short: "Delete a supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteSupply(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted supply %d\n", id)
			return nil
		},
	}
}
