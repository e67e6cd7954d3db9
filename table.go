package nocturneagent

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/unixpickle/essentials"
)

// WriteSummariesCSV writes one row per summary.
//
// The enrichment columns are only written if the first
// summary is enriched.
func WriteSummariesCSV(w io.Writer, summaries []*SceneSummary) (err error) {
	defer essentials.AddCtxTo("write summaries", &err)
	enriched := len(summaries) > 0 && summaries[0].Enriched

	header := []string{"scene_id", "veh_id", "goal_rate", "off_road",
		"veh_veh_collision", "num_controlled_vehs"}
	if enriched {
		header = append(header, "num_total_vehs", "num_int_paths")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range summaries {
		row := []string{
			s.Scene,
			strconv.FormatInt(int64(s.AgentID), 10),
			strconv.Itoa(s.GoalAchieved),
			strconv.Itoa(s.OffRoad),
			strconv.Itoa(s.Collisions),
			strconv.Itoa(s.NumControlled),
		}
		if enriched {
			row = append(row, strconv.Itoa(s.NumAgents),
				strconv.Itoa(s.IntersectingPaths))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
