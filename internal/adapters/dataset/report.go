package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/leaguecast/internal/domain/model"
)

// reportBand is how many teams the ranking columns list.
const reportBand = 5

var reportHeader = []string{"League", "Champion", "Probability", "High Ranking", "Low Ranking"}

// WriteReport writes one CSV row per league: the most likely champion with
// its probability, then the five likeliest teams of each ranking band sorted
// by name and joined with "/".
func WriteReport(w io.Writer, metrics []model.LeagueMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, m := range metrics {
		champion, p, _ := m.MostLikelyChampion()
		row := []string{
			m.League,
			champion,
			strconv.FormatFloat(p, 'f', 4, 64),
			topTeams(m.HighRanking),
			topTeams(m.LowRanking),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportFile writes the report to path.
func WriteReportFile(path string, metrics []model.LeagueMetrics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := WriteReport(f, metrics); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}

func topTeams(probs map[string]float64) string {
	ranked := model.RankTeams(probs)
	if len(ranked) > reportBand {
		ranked = ranked[:reportBand]
	}
	sort.Strings(ranked)
	return strings.Join(ranked, "/")
}
