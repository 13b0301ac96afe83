// Package analyze holds the cli commands that run the strategy engines on a
// single session.
package analyze

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/circuit"
	"github.com/mpapenbr/tyre-strategy/pkg/cmd/cmdutil"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
	"github.com/mpapenbr/tyre-strategy/pkg/laps"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/provider"
	"github.com/mpapenbr/tyre-strategy/pkg/racegap"
	"github.com/mpapenbr/tyre-strategy/pkg/racestints"
	"github.com/mpapenbr/tyre-strategy/pkg/service"
	"github.com/mpapenbr/tyre-strategy/pkg/undercut"
)

var sessionKey provider.SessionKey

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "runs the strategy analysis for a session",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if p := cmd.Root(); p.PersistentPreRunE != nil {
				if err := p.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			switch config.OutputFormat {
			case formatTable, formatJSON:
			default:
				return fmt.Errorf("unknown format %q (table, json)", config.OutputFormat)
			}
			if cmd.Name() == "circuit" {
				return nil
			}
			return sessionKey.Validate()
		},
	}
	pf := cmd.PersistentFlags()
	pf.IntVar(&sessionKey.Year, "year", 0, "season of the session")
	pf.StringVar(&sessionKey.Event, "event", "", "event name (e.g. Monza)")
	pf.StringVar(&sessionKey.Session, "session", "R", "session type (R, S, Q, FP1, ...)")
	pf.StringVar(&config.OutputFormat, "format", formatTable, "output format (table, json)")

	cmd.AddCommand(
		newDegradationCmd(),
		newTyreLifeCmd(),
		newStrategyCmd(),
		newGapCmd(),
		newPitStopsCmd(),
		newDuelCmd(),
		newPayoffCmd(),
		newInsightsCmd(),
		newConsistencyCmd(),
		newSectorsCmd(),
		newCircuitCmd(),
	)
	return cmd
}

// withAnalyzer creates the analyzer for the configured source and closes the
// database pool (if any) after fn returns.
func withAnalyzer(cmd *cobra.Command, fn func(ctx context.Context, a *service.Analyzer) error) error {
	ctx := cmd.Context()
	h, err := cmdutil.LoadHeuristics()
	if err != nil {
		return err
	}
	p, pool, err := cmdutil.NewProvider(ctx, false)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}
	a := service.NewAnalyzer(p,
		service.WithHeuristics(h),
		service.WithLogger(log.GetFromContext(ctx).Named("analyzer")))
	return fn(ctx, a)
}

func newDegradationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "degradation",
		Short: "mean lap time per compound and lap into the stint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.Degradation(ctx, sessionKey), degradationTable)
			})
		},
	}
}

func newTyreLifeCmd() *cobra.Command {
	var weather string
	cmd := &cobra.Command{
		Use:   "tyre-life",
		Short: "estimated usable laps per compound",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.TyreLife(ctx, sessionKey, model.ParseWeather(weather)), tyreLifeTable)
			})
		},
	}
	cmd.Flags().StringVar(&weather, "weather", string(model.WeatherDry), "weather condition")
	return cmd
}

func newStrategyCmd() *cobra.Command {
	var (
		p           racestints.Params
		circuitType string
		weather     string
	)
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "ranks the legal compound sequences by simulated race time",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := circuit.Infer(sessionKey.Event)
			p.CircuitType = profile.Type
			if circuitType != "" {
				p.CircuitType = model.ParseCircuitType(circuitType)
			}
			if !cmd.Flags().Changed("pit-loss") {
				p.PitLoss = profile.PitLoss
			}
			p.Weather = model.ParseWeather(weather)
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.Strategy(ctx, sessionKey, p), recommendationTable)
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&p.TotalLaps, "total-laps", 0, "race distance (0: laps of the session)")
	f.Float64Var(&p.PitLoss, "pit-loss", 0, "time lost per pit stop in seconds (default from circuit)")
	f.StringVar(&circuitType, "circuit-type", "", "high_deg, low_deg or balanced (default from circuit)")
	f.StringVar(&weather, "weather", string(model.WeatherDry), "weather condition")
	f.IntVar(&p.QualifyingPosition, "qualifying-position", 0, "grid position (0: unknown)")
	return cmd
}

func newGapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gap",
		Short: "gap to the leader per driver and lap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.Gap(ctx, sessionKey), gapTable)
			})
		},
	}
}

func newPitStopsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pitstops",
		Short: "detected pit stops with compound changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.PitStops(ctx, sessionKey), pitStopTable)
			})
		},
	}
}

func newDuelCmd() *cobra.Command {
	var p service.DuelParams
	cmd := &cobra.Command{
		Use:   "duel",
		Short: "simulates an undercut of driver against rival",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.CandidatePitLap <= 0 {
				return model.ValidationError("candidate-pit-lap must be > 0")
			}
			if !cmd.Flags().Changed("pit-delta") {
				p.PitDelta = circuit.Infer(sessionKey.Event).PitLoss
			}
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.Duel(ctx, sessionKey, p), duelTable)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Driver, "driver", "", "driver attempting the undercut")
	f.StringVar(&p.Rival, "rival", "", "driver to be undercut")
	f.IntVar(&p.CandidatePitLap, "candidate-pit-lap", 0, "lap the driver pits on")
	f.Float64Var(&p.PitDelta, "pit-delta", 0, "time lost in the pit lane in seconds (default from circuit)")
	_ = cmd.MarkFlagRequired("driver")
	_ = cmd.MarkFlagRequired("rival")
	return cmd
}

func newPayoffCmd() *cobra.Command {
	var (
		p                    undercut.Params
		compoundA, compoundB string
	)
	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "undercut versus overcut delta per lap",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.CompoundA = model.ParseCompound(compoundA)
			p.CompoundB = model.ParseCompound(compoundB)
			if !cmd.Flags().Changed("pit-loss") {
				p.PitLoss = circuit.Infer(sessionKey.Event).PitLoss
			}
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.Payoff(ctx, sessionKey, p), payoffTable)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&compoundA, "compound-a", "", "compound of the undercutting car")
	f.StringVar(&compoundB, "compound-b", "", "compound of the car staying out")
	f.IntVar(&p.UndercutLap, "undercut-lap", 0, "lap of the undercut stop")
	f.IntVar(&p.TotalLaps, "total-laps", 0, "laps to simulate (0: laps of the session)")
	f.Float64Var(&p.PitLoss, "pit-loss", 0, "time lost per pit stop in seconds (default from circuit)")
	_ = cmd.MarkFlagRequired("compound-a")
	_ = cmd.MarkFlagRequired("compound-b")
	return cmd
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "textual observations about the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.Insights(ctx, sessionKey), insightTable)
			})
		},
	}
}

func newConsistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "mean and standard deviation of lap times per stint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.Consistency(ctx, sessionKey), consistencyTable)
			})
		},
	}
}

func newSectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sectors",
		Short: "sector times per driver and lap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAnalyzer(cmd, func(ctx context.Context, a *service.Analyzer) error {
				return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
					a.Sectors(ctx, sessionKey), sectorTable)
			})
		},
	}
}

// newCircuitCmd does not need lap data, without --event all known profiles
// are listed.
func newCircuitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "circuit",
		Short: "shows the circuit profile used for defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := circuit.Profiles()
			if sessionKey.Event != "" {
				profiles = []circuit.Profile{circuit.Infer(sessionKey.Event)}
			}
			return printOutcome(cmd.OutOrStdout(), config.OutputFormat,
				model.OK(profiles), circuitTable)
		},
	}
}

func degradationTable(rows []model.DegradationRow) (header []string, ret [][]string) {
	header = []string{"Compound", "LapIndex", "LapTime"}
	for _, r := range rows {
		ret = append(ret, []string{r.Compound.String(), itoa(r.LapIndex), sec(r.LapTime)})
	}
	return header, ret
}

func tyreLifeTable(t racestints.TyreLife) (header []string, ret [][]string) {
	header = []string{"Compound", "Laps"}
	compounds := make([]model.Compound, 0, len(t))
	for c := range t {
		compounds = append(compounds, c)
	}
	sort.Slice(compounds, func(i, j int) bool { return compounds[i] < compounds[j] })
	for _, c := range compounds {
		ret = append(ret, []string{c.String(), itoa(t[c])})
	}
	return header, ret
}

func recommendationTable(r racestints.Recommendation) (header []string, ret [][]string) {
	header = []string{"Rank", "Strategy", "TotalTime", "Delta"}
	for i, s := range r.Ranking {
		ret = append(ret, []string{
			itoa(i + 1), s.Strategy, sec(s.TotalTime), sec(s.TotalTime - r.Best.TotalTime),
		})
	}
	return header, ret
}

func gapTable(rows []racegap.GapRow) (header []string, ret [][]string) {
	header = []string{"Driver", "Lap", "RaceTime", "Gap"}
	for _, r := range rows {
		ret = append(ret, []string{r.Driver, itoa(r.LapNumber), sec(r.RaceTime), sec(r.GapToLeader)})
	}
	return header, ret
}

func pitStopTable(rows []racegap.PitEvent) (header []string, ret [][]string) {
	header = []string{"Driver", "PitLap", "From", "To"}
	for _, r := range rows {
		ret = append(ret, []string{
			r.Driver, itoa(r.PitLap), r.PrevCompound.String(), r.NextCompound.String(),
		})
	}
	return header, ret
}

func duelTable(d racegap.DuelResult) (header []string, ret [][]string) {
	header = []string{"Lap", d.Driver, d.Rival, "Gap"}
	for i := range d.DriverCum {
		if i >= len(d.RivalCum) {
			break
		}
		ret = append(ret, []string{
			itoa(i + 1), sec(d.DriverCum[i]), sec(d.RivalCum[i]), sec(d.DriverCum[i] - d.RivalCum[i]),
		})
	}
	ret = append(ret, []string{"final", "", "", sec(d.FinalGap)})
	return header, ret
}

func payoffTable(p *undercut.Payoff) (header []string, ret [][]string) {
	header = []string{"Lap", "Delta", "GapToLeader"}
	for _, r := range p.Rows {
		ret = append(ret, []string{itoa(r.Lap), sec(r.Delta), sec(r.GapToLeader)})
	}
	ret = append(ret, []string{
		fmt.Sprintf("best %d", p.Summary.BestLap), "", sec(p.Summary.MinGap),
	})
	return header, ret
}

func insightTable(lines []string) (header []string, ret [][]string) {
	header = []string{"Insight"}
	for _, l := range lines {
		ret = append(ret, []string{l})
	}
	return header, ret
}

func consistencyTable(rows []laps.StintStats) (header []string, ret [][]string) {
	header = []string{"Driver", "Stint", "Laps", "Mean", "Std"}
	for _, r := range rows {
		ret = append(ret, []string{r.Driver, itoa(r.Stint), itoa(r.Laps), sec(r.MeanLap), sec(r.StdLap)})
	}
	return header, ret
}

func sectorTable(rows []laps.SectorTime) (header []string, ret [][]string) {
	header = []string{"Driver", "Lap", "Sector", "Time"}
	for _, r := range rows {
		ret = append(ret, []string{r.Driver, itoa(r.LapNumber), r.Sector, sec(r.Time)})
	}
	return header, ret
}

func circuitTable(profiles []circuit.Profile) (header []string, ret [][]string) {
	header = []string{"Circuit", "Type", "Category", "PitLoss", "Inferred"}
	for _, p := range profiles {
		ret = append(ret, []string{
			p.Name, string(p.Type), p.Category, sec(p.PitLoss), fmt.Sprint(p.Inferred),
		})
	}
	return header, ret
}
