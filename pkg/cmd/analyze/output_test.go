package analyze

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/racestints"
)

func TestPrintOutcome(t *testing.T) {
	life := racestints.TyreLife{model.CompoundSoft: 12, model.CompoundHard: 30}
	tests := []struct {
		name     string
		format   string
		outcome  model.Outcome[racestints.TyreLife]
		contains []string
		wantErr  bool
	}{
		{
			name:     "table",
			format:   formatTable,
			outcome:  model.OK(life),
			contains: []string{"Compound", "HARD", "30", "SOFT", "12"},
		},
		{
			name:     "json",
			format:   formatJSON,
			outcome:  model.OK(life),
			contains: []string{`"status": "ok"`, `"SOFT": 12`},
		},
		{
			name:     "empty table",
			format:   formatTable,
			outcome:  model.Empty[racestints.TyreLife]("no degradation data"),
			contains: []string{"no result: no degradation data"},
		},
		{
			name:     "empty json",
			format:   formatJSON,
			outcome:  model.Empty[racestints.TyreLife]("no degradation data"),
			contains: []string{`"status": "empty"`, `"reason": "no degradation data"`},
		},
		{
			name:    "error",
			format:  formatTable,
			outcome: model.Failed[racestints.TyreLife](errors.New("boom")),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := printOutcome(&buf, tt.format, tt.outcome, tyreLifeTable)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, buf.String())
				return
			}
			require.NoError(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, buf.String(), c)
			}
		})
	}
}

func TestJSONOutputIsValid(t *testing.T) {
	var buf bytes.Buffer
	rows := []model.DegradationRow{{Compound: model.CompoundMedium, LapIndex: 1, LapTime: 91.5}}
	require.NoError(t, printOutcome(&buf, formatJSON, model.OK(rows), degradationTable))
	var got struct {
		Status string                 `json:"status"`
		Value  []model.DegradationRow `json:"value"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, rows, got.Value)
}

func TestRecommendationTable(t *testing.T) {
	r := racestints.Recommendation{
		Best: racestints.RankedStrategy{Strategy: "M-H", TotalTime: 5000},
		Ranking: []racestints.RankedStrategy{
			{Strategy: "M-H", TotalTime: 5000},
			{Strategy: "S-M-H", TotalTime: 5012.5},
		},
	}
	header, rows := recommendationTable(r)
	assert.Equal(t, []string{"Rank", "Strategy", "TotalTime", "Delta"}, header)
	assert.Equal(t, [][]string{
		{"1", "M-H", "5000.000", "0.000"},
		{"2", "S-M-H", "5012.500", "12.500"},
	}, rows)
}
