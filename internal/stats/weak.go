package stats

import (
	"sort"
	"time"

	"github.com/fennwick/spelldash/internal/model"
	"github.com/fennwick/spelldash/internal/scheduler"
)

// SelectWeakWords returns the top-N words most in need of practice,
// ranked by the same priority score the scheduler uses.
func SelectWeakWords(perf map[string]model.WordPerformance, now time.Time, top int) []model.WordPerformance {
	if len(perf) == 0 {
		return nil
	}
	type ranked struct {
		perf  model.WordPerformance
		score int
	}
	candidates := make([]ranked, 0, len(perf))
	for _, p := range perf {
		p := p
		candidates = append(candidates, ranked{perf: p, score: scheduler.PriorityScore(&p, now)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].perf.Word < candidates[j].perf.Word
		}
		return candidates[i].score > candidates[j].score
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]model.WordPerformance, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].perf)
	}
	return out
}
