package metrics

import "commerce-insights/internal/dataset"

type ScoreShare struct {
	Score   int    `json:"score"`
	Reviews int    `json:"reviews"`
	Percent Scalar `json:"percent"`
}

type Reviews struct {
	Total        int          `json:"total"`
	Distribution []ScoreShare `json:"distribution"`
	MeanScore    Scalar       `json:"mean_score"`
	// MeanResponseDays averages the time from review creation to answer.
	MeanResponseDays Scalar `json:"mean_response_days"`
	// Unanswered reviews lack either timestamp, or were answered before
	// they were created; none of them count toward MeanResponseDays.
	Unanswered int `json:"unanswered"`
}

// ReviewMetrics always reports all five scores, so the distribution has
// a fixed shape even for an empty view.
func (e *Engine) ReviewMetrics(v *dataset.View) Reviews {
	var r Reviews
	var counts [5]int
	var scores, response []float64
	for _, o := range v.Orders() {
		for _, rv := range v.Reviews(o) {
			r.Total++
			counts[rv.Score-1]++
			scores = append(scores, float64(rv.Score))
			if rv.CreatedAt == nil || rv.AnsweredAt == nil {
				r.Unanswered++
				continue
			}
			d := days(*rv.CreatedAt, *rv.AnsweredAt)
			if d < 0 {
				r.Unanswered++
				continue
			}
			response = append(response, d)
		}
	}
	r.Distribution = make([]ScoreShare, len(counts))
	for i, n := range counts {
		r.Distribution[i] = ScoreShare{Score: i + 1, Reviews: n, Percent: percent(float64(n), float64(r.Total))}
	}
	r.MeanScore = mean(scores)
	r.MeanResponseDays = mean(response)
	return r
}
