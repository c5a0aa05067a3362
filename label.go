package dbscan

// Noise is the label of a point that belongs to no cluster.
const Noise = -1

// pointLabel is the classification of a single point during a run.
type pointLabel int

const (
	labelUnvisited pointLabel = iota
	labelVisited              // visited, not in any cluster (tentative noise)
	labelAssigned             // member of a cluster
)

// labelState is the per-run bookkeeping for each point: unvisited,
// visited-and-unassigned, or assigned to a cluster. Points are addressed by
// their index in the run's input slice.
type labelState struct {
	visited []bool
	cluster []int // cluster ID or Noise
	// queuedFor[i] is the cluster whose pending queue already holds point i.
	// Keyed by cluster so the slice never needs resetting between expansions.
	queuedFor []int
}

func newLabelState(n int) *labelState {
	s := &labelState{
		visited:   make([]bool, n),
		cluster:   make([]int, n),
		queuedFor: make([]int, n),
	}
	for i := 0; i < n; i++ {
		s.cluster[i] = Noise
		s.queuedFor[i] = Noise
	}
	return s
}

func (s *labelState) label(i int) pointLabel {
	switch {
	case s.cluster[i] != Noise:
		return labelAssigned
	case s.visited[i]:
		return labelVisited
	default:
		return labelUnvisited
	}
}

func (s *labelState) isAssigned(i int) bool { return s.cluster[i] != Noise }
func (s *labelState) markVisited(i int)    { s.visited[i] = true }

// assign places point i in cluster c. A point is assigned at most once; the
// first cluster to claim it keeps it.
func (s *labelState) assign(i, c int) bool {
	if s.cluster[i] != Noise {
		return false
	}
	s.cluster[i] = c
	return true
}

// enqueue records that point i is pending in cluster c's expansion queue and
// reports whether it was newly added.
func (s *labelState) enqueue(i, c int) bool {
	if s.queuedFor[i] == c {
		return false
	}
	s.queuedFor[i] = c
	return true
}

// labels returns the final per-point labels. Tentative noise that was never
// claimed by a cluster is final noise.
func (s *labelState) labels() []int {
	out := make([]int, len(s.cluster))
	copy(out, s.cluster)
	return out
}
