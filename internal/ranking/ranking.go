// Package ranking computes match standings from a replay's frame
// history: who was eliminated when, and in what order survivors
// finished, purely from each frame's owner plane.
//
// Grounded on halite/match.py's ranking(): players are ranked by the
// reverse of their elimination order, with ties at each elimination
// event (or among end-of-match survivors) broken by territory at the
// moment of elimination, then cumulative territory held over the whole
// match, then lowest player id.
package ranking

// Rank computes, for each player 1..numPlayers, its finishing rank
// (0 = first place) and its last-alive frame index (matching the
// "alive_count - 1" adjustment from the original visualizer), given
// the flat owner plane of every recorded frame.
func Rank(owners [][]uint8, numPlayers int) (ranks []int, lastAlive []int) {
	numFrames := len(owners)

	territory := make([][]int, numFrames)
	for f, plane := range owners {
		territory[f] = make([]int, numPlayers)
		for _, o := range plane {
			if o > 0 && int(o) <= numPlayers {
				territory[f][o-1]++
			}
		}
	}

	alive := make([][]bool, numFrames)
	for f := range territory {
		alive[f] = make([]bool, numPlayers)
		for p := 0; p < numPlayers; p++ {
			alive[f][p] = territory[f][p] > 0
		}
	}

	cum := make([][]int, numFrames)
	running := make([]int, numPlayers)
	for f := 0; f < numFrames; f++ {
		cum[f] = make([]int, numPlayers)
		for p := 0; p < numPlayers; p++ {
			running[p] += territory[f][p]
			cum[f][p] = running[p]
		}
	}

	aliveCounts := make([]int, numPlayers)
	for f := 0; f < numFrames; f++ {
		for p := 0; p < numPlayers; p++ {
			if alive[f][p] {
				aliveCounts[p]++
			}
		}
	}

	var elimSeq []int
	for f := 0; f < numFrames-1; f++ {
		var died []int
		for p := 0; p < numPlayers; p++ {
			if alive[f][p] && !alive[f+1][p] {
				died = append(died, p)
			}
		}
		sortByTerritory(died, territory[f], cum[f])
		elimSeq = append(elimSeq, died...)
	}

	if numFrames > 0 {
		var survivors []int
		for p := 0; p < numPlayers; p++ {
			if alive[numFrames-1][p] {
				survivors = append(survivors, p)
			}
		}
		sortByTerritory(survivors, territory[numFrames-1], cum[numFrames-1])
		elimSeq = append(elimSeq, survivors...)
	}

	bestFirst := make([]int, len(elimSeq))
	for i, v := range elimSeq {
		bestFirst[len(elimSeq)-1-i] = v
	}

	ranks = make([]int, numPlayers)
	for pos, idx := range bestFirst {
		ranks[idx] = pos
	}

	lastAlive = make([]int, numPlayers)
	for p := 0; p < numPlayers; p++ {
		lastAlive[p] = aliveCounts[p] - 1
	}

	return ranks, lastAlive
}

// sortByTerritory sorts player indices ascending by (territory at this
// frame, cumulative territory through this frame, player id) — a
// stable insertion sort since these slices are always small (<=
// MaxPlayers).
func sortByTerritory(idxs []int, territory, cum []int) {
	for i := 1; i < len(idxs); i++ {
		j := i
		for j > 0 && less(idxs[j], idxs[j-1], territory, cum) {
			idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
			j--
		}
	}
}

func less(a, b int, territory, cum []int) bool {
	if territory[a] != territory[b] {
		return territory[a] < territory[b]
	}
	if cum[a] != cum[b] {
		return cum[a] < cum[b]
	}
	return a < b
}
