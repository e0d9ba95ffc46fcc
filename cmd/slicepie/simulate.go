package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmynk/mandato360/internal/calculator"
	"github.com/mmynk/mandato360/internal/csvio"
	"github.com/mmynk/mandato360/internal/format"
	"github.com/mmynk/mandato360/internal/models"
)

func newSimulateCmd(opts *options) *cobra.Command {
	var (
		pool   float64
		mode   string
		asCSV  bool
		unlock bool
		locked []string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compute the Slice Pie allocation of the equity pool",
		Long: `Computes each contributor's economic value and share of the pool,
the usage of every category cap and whether the pool overflows.

Example:
  slicepie simulate --pool 8 --lock 5
  slicepie simulate --csv > alocacao.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.loadFixtures()
			if err != nil {
				return err
			}

			p := f.Pool
			if cmd.Flags().Changed("pool") {
				p.SizePercent = pool
			}
			if cmd.Flags().Changed("mode") {
				if p.Mode, err = models.ParsePoolMode(mode); err != nil {
					return err
				}
			}

			contributors := f.Contributors
			if unlock {
				for i := range contributors {
					contributors[i].IsLocked = false
				}
			}
			for _, id := range locked {
				found := false
				for i := range contributors {
					if contributors[i].ID == id {
						contributors[i].IsLocked = true
						found = true
					}
				}
				if !found {
					return fmt.Errorf("unknown contributor %q", id)
				}
			}

			sim := calculator.Simulate(p, contributors, f.Categories)
			if asCSV {
				return csvio.WriteAllocation(cmd.OutOrStdout(), sim.Shares)
			}
			printSimulation(cmd, sim)
			return nil
		},
	}

	cmd.Flags().Float64Var(&pool, "pool", 0, "pool size in percent (default from fixtures)")
	cmd.Flags().StringVar(&mode, "mode", "", "equity or phantom (default from fixtures)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write the allocation CSV instead of a table")
	cmd.Flags().BoolVar(&unlock, "unlock-all", false, "clear every lock before applying --lock")
	cmd.Flags().StringSliceVar(&locked, "lock", nil, "contributor IDs to exclude from the pool")
	return cmd
}

func printSimulation(cmd *cobra.Command, sim calculator.Simulation) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Slice Pie • pool %s (%s)", format.Percent(sim.Pool.SizePercent, 2), sim.Pool.Mode)))

	t := newTable("ID", "Nome", "Categoria", "Tipo", "Valor Econ.", "% Share", "Vesting/Cliff")
	for _, s := range sim.Shares {
		c := s.Contributor
		name := c.Name
		if c.IsLocked {
			name += " 🔒"
		}
		t.Row(
			c.ID,
			name,
			c.Category,
			string(c.Type),
			format.Money(s.EconomicValue),
			format.Percent(s.SharePercent, 4),
			strconv.Itoa(c.VestingMonths)+"m/"+strconv.Itoa(c.CliffMonths)+"m",
		)
	}
	fmt.Fprintln(out, t.String())

	cats := newTable("Categoria", "Uso", "Limite", "")
	for _, u := range sim.Categories {
		flag := ""
		if u.OverCap {
			flag = warnStyle.Render("acima do limite")
		}
		cats.Row(u.Category.Name, format.Percent(u.TotalShare, 2), format.Percent(u.Category.MaxPercent, 2), flag)
	}
	fmt.Fprintln(out, cats.String())

	fmt.Fprintf(out, "Valor econômico total: %s\n", format.Money(sim.TotalEconomicValue))
	fmt.Fprintf(out, "Distribuído: %s  Restante: %s\n", format.Percent(sim.TotalDistributed, 4), format.Percent(sim.RemainingPool, 4))
	if sim.Overflow {
		fmt.Fprintln(out, warnStyle.Render("⚠ A soma das participações excede o pool."))
	}
}
