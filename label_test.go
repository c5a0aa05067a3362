package dbscan

import "testing"

func TestLabelState_Transitions(t *testing.T) {
	s := newLabelState(3)

	for i := 0; i < 3; i++ {
		if got := s.label(i); got != labelUnvisited {
			t.Errorf("point %d: initial label %d, want unvisited", i, got)
		}
	}

	s.markVisited(0)
	if got := s.label(0); got != labelVisited {
		t.Errorf("after markVisited: label %d, want visited", got)
	}
	if s.isAssigned(0) {
		t.Error("visited point reported as assigned")
	}

	if !s.assign(0, 2) {
		t.Fatal("assign of unassigned point failed")
	}
	if got := s.label(0); got != labelAssigned {
		t.Errorf("after assign: label %d, want assigned", got)
	}

	// The first cluster to claim a point keeps it.
	if s.assign(0, 5) {
		t.Error("reassignment succeeded")
	}
	if got := s.labels()[0]; got != 2 {
		t.Errorf("cluster = %d, want 2", got)
	}
}

func TestLabelState_EnqueuePerCluster(t *testing.T) {
	s := newLabelState(2)

	if !s.enqueue(1, 0) {
		t.Error("first enqueue for cluster 0 rejected")
	}
	if s.enqueue(1, 0) {
		t.Error("duplicate enqueue for cluster 0 accepted")
	}
	if !s.enqueue(1, 1) {
		t.Error("enqueue for a new cluster rejected")
	}
}

func TestLabelState_LabelsDefaultToNoise(t *testing.T) {
	s := newLabelState(4)
	s.markVisited(1)
	s.assign(2, 0)

	want := []int{Noise, Noise, 0, Noise}
	got := s.labels()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("labels[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	// labels returns a copy.
	got[2] = 9
	if s.labels()[2] != 0 {
		t.Error("labels exposed internal state")
	}
}
