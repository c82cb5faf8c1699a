// cmd/advisor/planning.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/models"
	generateadvice "advisory-workers/internal/workers/advisory/generate-advice"
	projectgoal "advisory-workers/internal/workers/planning/project-goal"
	requiredsip "advisory-workers/internal/workers/planning/required-sip"
	summarizeportfolio "advisory-workers/internal/workers/planning/summarize-portfolio"
)

const dateLayout = "2006-01-02"

var (
	goalTarget     float64
	goalCurrent    float64
	goalMonthly    float64
	goalCreated    string
	goalTargetDate string
	goalAchieved   bool

	sipTarget float64
	sipMonths int

	portfolioProfile string
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Project a savings goal",
	RunE:  runGoal,
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio <holdings.json>",
	Short: "Summarize holdings from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE:  runPortfolio,
}

var sipCmd = &cobra.Command{
	Use:   "sip",
	Short: "Monthly contribution needed to reach a target",
	RunE:  runSIP,
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check whether the generation backend is reachable",
	RunE:  runProbe,
}

func init() {
	goalCmd.Flags().Float64Var(&goalTarget, "target", 0, "target amount")
	goalCmd.Flags().Float64Var(&goalCurrent, "current", 0, "amount saved so far")
	goalCmd.Flags().Float64Var(&goalMonthly, "monthly", 0, "monthly contribution")
	goalCmd.Flags().StringVar(&goalCreated, "created", "", "creation date, YYYY-MM-DD (default today)")
	goalCmd.Flags().StringVar(&goalTargetDate, "by", "", "target date, YYYY-MM-DD")
	goalCmd.Flags().BoolVar(&goalAchieved, "achieved", false, "mark the goal as achieved")
	_ = goalCmd.MarkFlagRequired("target")
	_ = goalCmd.MarkFlagRequired("by")

	sipCmd.Flags().Float64Var(&sipTarget, "target", 0, "target amount")
	sipCmd.Flags().IntVar(&sipMonths, "months", 0, "months to the target")
	_ = sipCmd.MarkFlagRequired("target")
	_ = sipCmd.MarkFlagRequired("months")

	portfolioCmd.Flags().StringVar(&portfolioProfile, "profile", "", "JSON file with a user profile, enables rebalancing advice")

	rootCmd.AddCommand(goalCmd, portfolioCmd, sipCmd, probeCmd)
}

func parseDate(field, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewInvalidInputError(field, fmt.Sprintf("expected %s, got %q", dateLayout, value))
	}
	return t, nil
}

func runGoal(cmd *cobra.Command, _ []string) error {
	now := time.Now().UTC()
	created, err := parseDate("created", goalCreated, now)
	if err != nil {
		return err
	}
	target, err := parseDate("by", goalTargetDate, time.Time{})
	if err != nil {
		return err
	}

	h := projectgoal.NewHandler(projectgoal.LoadConfig(), nil, nil, logger.NewNoOpLogger())
	out, err := h.Execute(cmd.Context(), &projectgoal.Input{Goal: &models.Goal{
		ID:                  "cli",
		TargetAmount:        goalTarget,
		CurrentAmount:       goalCurrent,
		MonthlyContribution: goalMonthly,
		CreatedAt:           created,
		TargetDate:          target,
		IsAchieved:          goalAchieved,
	}})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, out.Projection)
	}
	p := out.Projection
	fmt.Fprintf(w, "Status:            %s\n", p.Status)
	fmt.Fprintf(w, "Progress:          %.1f%%\n", p.DisplayProgressPct)
	fmt.Fprintf(w, "Months remaining:  %d of %d\n", p.MonthsRemaining, p.TotalMonths)
	fmt.Fprintf(w, "Projected amount:  %.2f\n", p.ProjectedAmount)
	if p.RequiredMonthly != nil {
		fmt.Fprintf(w, "Required monthly:  %.2f\n", *p.RequiredMonthly)
	}
	if p.MonthlyShortfall > 0 {
		fmt.Fprintf(w, "Monthly shortfall: %.2f\n", p.MonthlyShortfall)
	}
	fmt.Fprintf(w, "Success odds:      %.0f%%\n", p.SuccessProbabilityPct)
	if rec := out.Recommendation; rec != nil {
		fmt.Fprintf(w, "Suggested vehicle: %s, %.0f%% expected, %s risk\n", rec.InvestmentType, rec.ExpectedReturnPct, rec.RiskLevel)
		fmt.Fprintf(w, "Suggested SIP:     %.2f\n", rec.RecommendedMonthlySIP)
	}
	return nil
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var holdings []models.Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		return apperrors.NewInvalidInputError("holdings", fmt.Sprintf("parse %s: %v", args[0], err))
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}

	input := &summarizeportfolio.Input{Holdings: holdings}
	if portfolioProfile != "" {
		if input.Profile, err = readProfile(portfolioProfile); err != nil {
			return err
		}
	}

	h := summarizeportfolio.NewHandler(summarizeportfolio.LoadConfig(), nil, nil, logger.NewNoOpLogger())
	out, err := h.Execute(cmd.Context(), input)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if out.Recommendation != nil {
			return printJSON(w, out)
		}
		return printJSON(w, out.Summary)
	}
	s := out.Summary
	for _, hp := range s.Holdings {
		fmt.Fprintf(w, "%-12s %12.2f -> %12.2f  %+10.2f (%+.2f%%)\n", hp.Symbol, hp.Invested, hp.Current, hp.GainLoss, hp.GainLossPct)
	}
	fmt.Fprintf(w, "%-12s %12.2f -> %12.2f  %+10.2f (%+.2f%%)\n", "TOTAL", s.TotalInvested, s.TotalCurrent, s.TotalGainLoss, s.TotalGainPct)
	for _, a := range s.Allocation {
		fmt.Fprintf(w, "  %-6s %6.2f%%\n", a.AssetType, a.Pct)
	}
	if rec := out.Recommendation; rec != nil {
		fmt.Fprintf(w, "Risk profile:    %s (score %d)\n", rec.RiskProfile, rec.RiskScore)
		fmt.Fprintf(w, "Diversification: %.0f/100\n", rec.DiversificationScore)
		for _, r := range rec.Rebalancing {
			fmt.Fprintf(w, "  %-8s %-12s %5.1f%% (%.1f%% -> %.0f%%)\n", r.Action, r.Class, r.AdjustmentPct, r.CurrentPct, r.TargetPct)
		}
	}
	return nil
}

func runSIP(cmd *cobra.Command, _ []string) error {
	h := requiredsip.NewHandler(requiredsip.LoadConfig(), logger.NewNoOpLogger())
	out, err := h.Execute(cmd.Context(), &requiredsip.Input{TargetAmount: sipTarget, Months: sipMonths})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, out)
	}
	fmt.Fprintf(w, "Monthly SIP:   %.2f for %d months at %.0f%% a year\n", out.RequiredMonthly, out.Months, out.AnnualReturnRate*100)
	fmt.Fprintf(w, "You invest:    %.2f\n", out.TotalContribution)
	fmt.Fprintf(w, "Growth:        %.2f\n", out.ExpectedGains)
	return nil
}

func runProbe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	zapLog, log := newLogger()
	defer zapLog.Sync()

	gen, err := generatorFor(cfg.APIs.Generation)
	if err != nil {
		return err
	}
	orch := generateadvice.NewOrchestrator(gen, generateadvice.ConfigFrom(cfg), log)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	ok := orch.Probe(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", cfg.APIs.Generation.Provider, orch.State(), cfg.APIs.Generation.Model)
	if !ok {
		return fmt.Errorf("generation backend unavailable")
	}
	return nil
}
