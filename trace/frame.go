// Package trace records per-tick traversal state as zstd compressed JSON
// lines and streams it to live observers over websockets.
package trace

// Frame is one entity's traversal state at the end of a tick.
type Frame struct {
	Tick           uint64      `json:"tick"`
	Time           float64     `json:"time"`
	Entity         uint64      `json:"entity"`
	Position       [3]float64  `json:"pos"`
	Velocity       [3]float64  `json:"vel"`
	Speed          float64     `json:"speed"`
	Mode           string      `json:"mode"`
	Modifier       string      `json:"modifier"`
	JumpCount      int         `json:"jump_count"`
	Grounded       bool        `json:"grounded"`
	DashOnCooldown bool        `json:"dash_cooldown,omitempty"`
	View           [3]float64  `json:"view"` // pitch, yaw, roll
	HookAnchor     *[3]float64 `json:"hook_anchor,omitempty"`
	WallNormal     *[3]float64 `json:"wall_normal,omitempty"`
	Events         []string    `json:"events,omitempty"`
}

// Sink receives frames as they are produced.
type Sink interface {
	WriteFrame(f Frame) error
}

// Summary aggregates a recorded run.
type Summary struct {
	Frames       int
	Duration     float64
	MaxSpeed     float64
	Jumps        int
	Landings     int
	ModifierTime map[string]float64
	// Activations counts how often each modifier became active.
	Activations map[string]int
}

// Summarizer folds frames into a Summary as they arrive, keeping only the
// last frame of each entity. It is a Sink, so long runs can be summarized
// without holding their frames.
type Summarizer struct {
	sum        Summary
	last       map[uint64]Frame
	start, end float64
}

func NewSummarizer() *Summarizer {
	return &Summarizer{
		sum: Summary{
			ModifierTime: make(map[string]float64),
			Activations:  make(map[string]int),
		},
		last: make(map[uint64]Frame),
	}
}

// Add folds one frame. Time spent in a modifier is credited from the tick
// it was observed to the next frame of the same entity.
func (s *Summarizer) Add(f Frame) {
	if s.sum.Frames == 0 || f.Time < s.start {
		s.start = f.Time
	}
	if f.Time > s.end {
		s.end = f.Time
	}
	s.sum.Frames++
	if f.Speed > s.sum.MaxSpeed {
		s.sum.MaxSpeed = f.Speed
	}
	for _, ev := range f.Events {
		if ev == "landed" {
			s.sum.Landings++
		}
	}

	prev, seen := s.last[f.Entity]
	if seen {
		s.sum.ModifierTime[prev.Modifier] += f.Time - prev.Time
		if f.JumpCount > prev.JumpCount {
			s.sum.Jumps += f.JumpCount - prev.JumpCount
		}
	} else if f.JumpCount > 0 {
		s.sum.Jumps += f.JumpCount
	}
	if f.Modifier != "none" && (!seen || prev.Modifier != f.Modifier) {
		s.sum.Activations[f.Modifier]++
	}
	s.last[f.Entity] = f
}

func (s *Summarizer) WriteFrame(f Frame) error {
	s.Add(f)
	return nil
}

// Summary returns a copy of the totals so far.
func (s *Summarizer) Summary() Summary {
	out := s.sum
	out.ModifierTime = make(map[string]float64, len(s.sum.ModifierTime))
	for k, v := range s.sum.ModifierTime {
		out.ModifierTime[k] = v
	}
	out.Activations = make(map[string]int, len(s.sum.Activations))
	for k, v := range s.sum.Activations {
		out.Activations[k] = v
	}
	if out.Frames > 0 {
		out.Duration = s.end - s.start
	}
	return out
}

// Summarize folds recorded frames in order.
func Summarize(frames []Frame) Summary {
	s := NewSummarizer()
	for _, f := range frames {
		s.Add(f)
	}
	return s.Summary()
}
