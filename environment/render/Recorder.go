package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/handreach/environment/hand"
	ts "github.com/samuelfneumann/handreach/timestep"
)

// Scener is an environment that can be snapshot for rendering
type Scener interface {
	Scene() (hand.Scene, error)
}

// Recorder is a Tracker which saves a PNG frame of its environment
// every few timesteps. The timestep passed to Track only decides
// whether a frame is saved; the frame itself is a Scene of the
// registered environment.
type Recorder struct {
	env      Scener
	renderer *Renderer
	dir      string
	every    int

	episode int
	frames  int
}

// NewRecorder returns a Recorder saving a frame of env to dir on every
// every'th step of each episode. The first and last step of every
// episode are always saved.
func NewRecorder(env Scener, r *Renderer, dir string,
	every int) (*Recorder, error) {
	if every <= 0 {
		return nil, fmt.Errorf("newRecorder: illegal frame interval %v",
			every)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newRecorder: %w", err)
	}

	return &Recorder{
		env:      env,
		renderer: r,
		dir:      dir,
		every:    every,
		episode:  -1,
	}, nil
}

// Track saves a frame if t is due to be recorded
func (r *Recorder) Track(t ts.TimeStep) error {
	if t.First() {
		r.episode++
	}
	if !t.First() && !t.Last() && t.Number%r.every != 0 {
		return nil
	}

	scene, err := r.env.Scene()
	if err != nil {
		return fmt.Errorf("track: %w", err)
	}

	name := fmt.Sprintf("episode%03d_step%04d.png", r.episode, t.Number)
	if err := r.renderer.SavePNG(filepath.Join(r.dir, name), scene); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames saved so far
func (r *Recorder) Frames() int {
	return r.frames
}

// Save does nothing: frames are written as they are tracked
func (r *Recorder) Save() error {
	return nil
}
