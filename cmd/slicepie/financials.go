package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/mandato360/internal/csvio"
	"github.com/mmynk/mandato360/internal/format"
	"github.com/mmynk/mandato360/internal/models"
)

func newFinancialsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "financials",
		Short: "Show, export or validate the five-year projection table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.loadFixtures()
			if err != nil {
				return err
			}
			printFinancials(cmd.OutOrStdout(), "Projeções financeiras", f.Financials)
			return nil
		},
	}
	cmd.AddCommand(newFinancialsExportCmd(opts))
	cmd.AddCommand(newFinancialsImportCmd())
	return cmd
}

func newFinancialsExportCmd(opts *options) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the projection table as CSV (Ano,Receita,Custos,Lucro)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.loadFixtures()
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				return csvio.WriteFinancials(cmd.OutOrStdout(), f.Financials)
			}
			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := csvio.WriteFinancials(file, f.Financials); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newFinancialsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Validate a projection CSV and print the rows it contains",
		Long: `Parses a CSV in the export layout and prints the resulting table.
Any non-numeric field fails the import with its line number.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				r = file
			}

			rows, err := csvio.ReadFinancials(r)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Nenhuma linha de dados encontrada."))
				return nil
			}
			printFinancials(cmd.OutOrStdout(), fmt.Sprintf("%d anos importados", len(rows)), rows)
			return nil
		},
	}
}

func printFinancials(out io.Writer, title string, rows []models.FinancialYear) {
	fmt.Fprintln(out, titleStyle.Render(title))
	t := newTable("Ano", "Receita", "Custos", "Lucro", "Margem")
	for _, r := range rows {
		t.Row(fmt.Sprint(r.Year), format.Money(r.Revenue), format.Money(r.Costs), format.Money(r.Profit), format.Percent(r.Margin(), 1))
	}
	fmt.Fprintln(out, t.String())
}
