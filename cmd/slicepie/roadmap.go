package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmynk/mandato360/internal/calculator"
	"github.com/mmynk/mandato360/internal/format"
)

func newRoadmapCmd(opts *options) *cobra.Command {
	var (
		startMonth int
		churn      float64
	)

	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Revenue roadmap KPIs and the first-year projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.loadFixtures()
			if err != nil {
				return err
			}
			rm := f.Roadmap
			if cmd.Flags().Changed("start-month") {
				rm.StartMonth = startMonth
			}
			if cmd.Flags().Changed("churn") {
				rm.ChurnRate = churn
			}

			kpis, err := calculator.ComputeKPIs(rm.Levels, rm.StartMonth, rm.ChurnRate, rm.AnnualGoal)
			if err != nil {
				return err
			}
			months, err := calculator.ProjectMonthly(rm.Levels, rm.StartMonth, rm.AnnualGoal)
			if err != nil {
				return err
			}
			plan := calculator.LongTermPlan(rm.FirstYear, kpis.AnnualRevenue, rm.AnnualGoal, rm.Targets)

			printRoadmap(cmd.OutOrStdout(), rm.FirstYear, kpis, months, plan)
			return nil
		},
	}
	cmd.Flags().IntVar(&startMonth, "start-month", 0, "first billing month, 0 = janeiro")
	cmd.Flags().Float64Var(&churn, "churn", 0, "monthly churn in percent (default from fixtures)")
	return cmd
}

func printRoadmap(out io.Writer, firstYear int, k calculator.RoadmapKPIs, months []calculator.MonthPoint, plan []calculator.YearTarget) {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Roadmap de receita %d", firstYear)))

	kpis := newTable("Indicador", "Valor")
	kpis.Row("MRR", format.Money(k.MRR))
	kpis.Row("ARR", format.Money(k.ARR))
	kpis.Row("Receita anual", format.Money(k.AnnualRevenue))
	kpis.Row("Implantação", format.Money(k.TotalImplementation))
	kpis.Row("Clientes", format.Integer(k.TotalClients))
	kpis.Row("Ticket médio", format.Money(k.WeightedTicket))
	kpis.Row("LTV / CAC", fmt.Sprintf("%s / %s", format.Money(k.LTV), format.Money(k.CAC)))
	kpis.Row("Valuation", format.Money(k.Valuation))
	kpis.Row("Meta atingida", format.Percent(k.GoalProgress, 1))
	fmt.Fprintln(out, kpis.String())

	proj := newTable("Mês", "Conservador", "Realista", "Agressivo")
	for _, m := range months {
		proj.Row(m.Month, format.Money(m.Conservative), format.Money(m.Realistic), format.Money(m.Aggressive))
	}
	fmt.Fprintln(out, proj.String())

	long := newTable("Ano", "Receita", "Meta")
	for _, y := range plan {
		long.Row(fmt.Sprint(y.Year), format.Money(y.Value), format.Money(y.Target))
	}
	fmt.Fprintln(out, long.String())
}
