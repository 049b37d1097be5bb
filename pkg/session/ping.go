package session

import "sort"

// maxRTTSamples is the number of recent round trips kept for the ping
// estimate.
const maxRTTSamples = 10

type rttTracker struct {
	recent []int64
}

func (t *rttTracker) add(rtt int64) {
	t.recent = append(t.recent, rtt)
	for len(t.recent) > maxRTTSamples {
		t.recent = t.recent[1:]
	}
}

// average returns the mean round trip in milliseconds, ignoring outliers.
func (t *rttTracker) average() float64 {
	samples := removeOutlierRTTs(t.recent)
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, rtt := range samples {
		sum += float64(rtt)
	}
	return sum / float64(len(samples))
}

// removeOutlierRTTs drops round trips over twice the median that are also
// over 20ms.
func removeOutlierRTTs(rtts []int64) []int64 {
	median := medianRTT(rtts)
	result := make([]int64, 0, len(rtts))
	for _, rtt := range rtts {
		if rtt > 2*median && rtt > 20 {
			continue
		}
		result = append(result, rtt)
	}
	return result
}

func medianRTT(rtts []int64) int64 {
	if len(rtts) == 0 {
		return 0
	}
	sorted := append([]int64(nil), rtts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
