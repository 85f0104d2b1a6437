package trackers

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/samuelfneumann/handreach/experiment/tracker"
	ts "github.com/samuelfneumann/handreach/timestep"
	"gonum.org/v1/gonum/mat"
)

// episode returns the timesteps of an episode with the given rewards
// after the first step
func episode(rewards ...float64) []ts.TimeStep {
	obs := mat.NewVecDense(1, nil)
	steps := []ts.TimeStep{ts.New(ts.First, 0, 1, obs, 0)}
	for i, r := range rewards {
		t := ts.Mid
		if i == len(rewards)-1 {
			t = ts.Last
		}
		steps = append(steps, ts.New(t, r, 1, obs, i+1))
	}
	return steps
}

func trackAll(t *testing.T, tr tracker.Tracker, steps ...[]ts.TimeStep) {
	t.Helper()
	for _, episode := range steps {
		for _, step := range episode {
			if err := tr.Track(step); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestReturn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "returns.bin")
	r := NewReturn(path)

	trackAll(t, r, episode(1, 0.5, 0.25), episode(-1), episode(0, 0, 0, 2))
	want := []float64{1.75, -1, 2}

	if err := r.Save(); err != nil {
		t.Fatal(err)
	}
	data, err := tracker.LoadData[float64](path)
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != len(want) {
		t.Fatalf("returns \n\twant(%v) \n\thave(%v)", want, data)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("return %v \n\twant(%v) \n\thave(%v)", i, want[i],
				data[i])
		}
	}
}

func TestReturnNonSequential(t *testing.T) {
	r := NewReturn(filepath.Join(t.TempDir(), "returns.bin"))
	steps := episode(1, 1, 1)

	if err := r.Track(steps[0]); err != nil {
		t.Fatal(err)
	}
	if err := r.Track(steps[2]); err == nil {
		t.Error("track: skipped timestep did not return an error")
	}
}

func TestEpisodeLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lengths.bin")
	e := NewEpisodeLength(path)

	trackAll(t, e, episode(1, 2, 3), episode(1))
	// Unfinished episodes are not saved
	trackAll(t, e, episode(1, 1)[:2])

	if err := e.Save(); err != nil {
		t.Fatal(err)
	}
	data, err := tracker.LoadData[int](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 2 || data[0] != 3 || data[1] != 1 {
		t.Errorf("lengths \n\twant([3 1]) \n\thave(%v)", data)
	}
}

func TestLoadDataMissing(t *testing.T) {
	_, err := tracker.LoadData[float64](filepath.Join(t.TempDir(), "none"))
	if err == nil {
		t.Error("loadData: missing file did not return an error")
	}
}

func TestStore(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "episodes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Track(episode(1)[0]); !errors.Is(err, ErrNoRun) {
		t.Errorf("track: \n\twant(%v) \n\thave(%v)", ErrNoRun, err)
	}

	first, err := s.BeginRun("SingleFinger", `{"fingers":1}`, 7)
	if err != nil {
		t.Fatal(err)
	}
	trackAll(t, s, episode(0.5, 0.25), episode(1, 1, 1))
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	second, err := s.BeginRun("Fingers", `{"fingers":3}`, 8)
	if err != nil {
		t.Fatal(err)
	}
	if second == first || second == uuid.Nil {
		t.Errorf("beginRun: run ids not unique: %v, %v", first, second)
	}
	trackAll(t, s, episode(0))
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	episodes, err := s.Episodes(first)
	if err != nil {
		t.Fatal(err)
	}
	want := []Episode{
		{Episode: 0, Steps: 2, Return: 0.75, FinalReward: 0.25},
		{Episode: 1, Steps: 3, Return: 3, FinalReward: 1},
	}
	if len(episodes) != len(want) {
		t.Fatalf("episodes \n\twant(%v) \n\thave(%v)", want, episodes)
	}
	for i := range want {
		if episodes[i] != want[i] {
			t.Errorf("episode %v \n\twant(%+v) \n\thave(%+v)", i, want[i],
				episodes[i])
		}
	}

	runs, err := s.Runs()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs \n\twant(2) \n\thave(%v)", len(runs))
	}
	ids := map[uuid.UUID]Run{runs[0].ID: runs[0], runs[1].ID: runs[1]}
	if r := ids[second]; r.Environment != "Fingers" || r.Seed != 8 {
		t.Errorf("run \n\twant(Fingers, 8) \n\thave(%v, %v)", r.Environment,
			r.Seed)
	}

	if n, err := s.Episodes(second); err != nil || len(n) != 1 {
		t.Errorf("episodes of second run \n\twant(1) \n\thave(%v, %v)",
			len(n), err)
	}
}

func TestStoreSaveTwice(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "episodes.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id, err := s.BeginRun("SingleFinger", "{}", 1)
	if err != nil {
		t.Fatal(err)
	}
	trackAll(t, s, episode(1))
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	trackAll(t, s, episode(1))
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	episodes, err := s.Episodes(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(episodes) != 2 || episodes[1].Episode != 1 {
		t.Errorf("episodes \n\twant(2 distinct) \n\thave(%+v)", episodes)
	}
}
