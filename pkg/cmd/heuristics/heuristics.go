// Package heuristics holds the command that prints the effective heuristics.
package heuristics

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/tyre-strategy/pkg/circuit"
	"github.com/mpapenbr/tyre-strategy/pkg/cmd/cmdutil"
	"github.com/mpapenbr/tyre-strategy/pkg/config"
)

type document struct {
	Heuristics *config.Heuristics `yaml:"heuristics"`
}

func NewHeuristicsCmd() *cobra.Command {
	var withForecasts bool
	cmd := &cobra.Command{
		Use:   "heuristics",
		Short: "prints the effective heuristics as config file section",
		Long: `Prints the heuristics after applying the config file on top of the defaults.
The output may be used as starting point for the heuristics section of .tsa.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := cmdutil.LoadHeuristics()
			if err != nil {
				return err
			}
			if withForecasts {
				mergeForecasts(h)
			}
			return write(cmd.OutOrStdout(), h)
		},
	}
	cmd.Flags().BoolVar(&withForecasts, "with-forecasts", false,
		"add the forecast biases as weather tyre life factors (configured values win)")
	return cmd
}

// mergeForecasts adds the forecast biases for weather states without a
// configured tyre life factor.
func mergeForecasts(h *config.Heuristics) {
	if h.Weather.TyreLifeFactors == nil {
		h.Weather.TyreLifeFactors = map[string]float64{}
	}
	for k, v := range circuit.ForecastTyreLifeFactors() {
		if _, ok := h.Weather.TyreLifeFactors[k]; !ok {
			h.Weather.TyreLifeFactors[k] = v
		}
	}
}

func write(w io.Writer, h *config.Heuristics) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Heuristics: h}); err != nil {
		return err
	}
	return enc.Close()
}
