package model

// Dashboard summarises payments and client risk for the overview screen.
type Dashboard struct {
	TotalIncome            float64       `json:"total_income"`
	PendingDues            float64       `json:"pending_dues"`
	PendingPayments        int           `json:"pending_payments"`
	ClientCount            int           `json:"client_count"`
	AveragePredictionScore float64       `json:"average_prediction_score"`
	ScoreDistribution      []ScoreBucket `json:"score_distribution"`
}

// ScoreBucket counts clients whose prediction score falls in Range.
// Clients without a score are counted as 0.
type ScoreBucket struct {
	Range   string `json:"range"`
	Clients int    `json:"clients"`
}

var scoreBuckets = []struct {
	upTo  float64
	label string
}{
	{20, "0-20"},
	{40, "21-40"},
	{60, "41-60"},
	{80, "61-80"},
	{100, "81-100"},
}

// NewScoreDistribution returns every bucket, including empty ones, in
// ascending order.
func NewScoreDistribution() []ScoreBucket {
	out := make([]ScoreBucket, len(scoreBuckets))
	for i, b := range scoreBuckets {
		out[i] = ScoreBucket{Range: b.label}
	}
	return out
}

// ScoreBucketIndex returns the bucket a score belongs to. Scores above 100
// land in the last bucket.
func ScoreBucketIndex(score float64) int {
	for i, b := range scoreBuckets[:len(scoreBuckets)-1] {
		if score <= b.upTo {
			return i
		}
	}
	return len(scoreBuckets) - 1
}

// IsPending reports whether the payment still awaits settlement.
func (s PaymentStatus) IsPending() bool {
	return s == PaymentStatusLinkSent || s == PaymentStatusPendingLink
}
