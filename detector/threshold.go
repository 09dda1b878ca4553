package detector

import "fmt"

// Code is the single byte sent to the notification sink for each motion tick.
type Code uint8

const (
	CodeIdle Code = 0
	CodeUp   Code = 1
	CodeDown Code = 2
)

func (c Code) String() string {
	switch c {
	case CodeIdle:
		return "idle"
	case CodeUp:
		return "up"
	case CodeDown:
		return "down"
	}
	return fmt.Sprintf("code(%d)", uint8(c))
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Direction records which threshold was last exceeded.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
)

// State is the classifier's externally visible state.
type State int

const (
	StateIdle State = iota
	StateExceededUp
	StateExceededDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExceededUp:
		return "exceeded-up"
	case StateExceededDown:
		return "exceeded-down"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Default classifier tuning in accelerometer units (milli-g).
const (
	PositiveThreshold = 950
	NegativeThreshold = -550
	SubWindow         = Window
)

// ClassifierConfig tunes the hysteresis thresholds.
type ClassifierConfig struct {
	Positive  int
	Negative  int
	SubWindow int
}

// DefaultClassifierConfig returns the stock thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Positive:  PositiveThreshold,
		Negative:  NegativeThreshold,
		SubWindow: SubWindow,
	}
}

// Classifier is a two-threshold hysteresis state machine. Entering an
// exceeded state is judged on the filtered value; leaving it requires
// SubWindow consecutive raw samples back inside the threshold.
//
// Up and down codes are edge-triggered: they are returned only on the tick
// that crosses a threshold. Every other tick returns CodeIdle, including
// ticks spent inside the exceeded region.
type Classifier struct {
	cfg       ClassifierConfig
	exceeded  bool
	direction Direction
}

// Validate checks the thresholds and the release window.
func (c ClassifierConfig) Validate() error {
	switch {
	case c.SubWindow < 1:
		return fmt.Errorf("%w: sub-window must be at least 1, got %d", ErrInvalidConfig, c.SubWindow)
	case c.Positive <= c.Negative:
		return fmt.Errorf("%w: positive threshold %d must be above negative threshold %d",
			ErrInvalidConfig, c.Positive, c.Negative)
	}
	return nil
}

// NewClassifier creates an idle Classifier.
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{cfg: cfg}, nil
}

// Update advances the state machine by one tick and returns the code to send.
// recentRaw holds the latest raw samples of the filtered axis, oldest first;
// only the last SubWindow of them are inspected.
func (c *Classifier) Update(filtered float64, recentRaw []int16) Code {
	if !c.exceeded {
		switch {
		case filtered > float64(c.cfg.Positive):
			c.exceeded, c.direction = true, DirUp
			return CodeUp
		case filtered < float64(c.cfg.Negative):
			c.exceeded, c.direction = true, DirDown
			return CodeDown
		}
		return CodeIdle
	}

	if len(recentRaw) < c.cfg.SubWindow {
		return CodeIdle
	}
	window := recentRaw[len(recentRaw)-c.cfg.SubWindow:]
	inside := 0
	for _, v := range window {
		switch c.direction {
		case DirUp:
			if int(v) <= c.cfg.Positive {
				inside++
			}
		case DirDown:
			if int(v) >= c.cfg.Negative {
				inside++
			}
		}
	}
	if inside == c.cfg.SubWindow {
		c.exceeded, c.direction = false, DirNone
	}
	return CodeIdle
}

// State reports the current state.
func (c *Classifier) State() State {
	if !c.exceeded {
		return StateIdle
	}
	if c.direction == DirDown {
		return StateExceededDown
	}
	return StateExceededUp
}
