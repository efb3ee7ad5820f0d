package barx

import "runtime"

// scaledEpisodes trims episode counts when there are fewer cores than
// spinning participants: an oversubscribed busy-wait barrier advances
// only as fast as the scheduler rotates the spinners, and the full
// counts would dominate the suite's runtime without testing anything
// extra.
func scaledEpisodes(parties, want int) int {
	if runtime.NumCPU() >= parties {
		return want
	}
	if scaled := want / 10; scaled > 0 {
		return scaled
	}
	return 1
}
