package phantom

import (
	"strconv"
	"strings"

	"github.com/san-kum/phantomgo/internal/hd"
)

// Buttons is a mask of stylus buttons.
type Buttons int32

const (
	None    Buttons = 0
	Button1 Buttons = hd.Button1
	Button2 Buttons = hd.Button2
	Button3 Buttons = hd.Button3
	Button4 Buttons = hd.Button4
)

// Has reports whether every bit of b is set.
func (m Buttons) Has(b Buttons) bool { return m&b == b }

func (m Buttons) String() string {
	if m == None {
		return "none"
	}
	var parts []string
	for i := 0; i < 4; i++ {
		if m&(1<<i) != 0 {
			parts = append(parts, strconv.Itoa(i+1))
		}
	}
	return strings.Join(parts, "+")
}

// ButtonSource reads the live button mask. [*Session] is one.
type ButtonSource interface {
	Buttons() (Buttons, error)
}

// ButtonTracker keeps the masks of the last two application frames so
// edges can be queried. Advance it once per frame, not per servo tick;
// a press and release inside one frame is not seen. It is not safe for
// concurrent use.
type ButtonTracker struct {
	src      ButtonSource
	previous Buttons
	current  Buttons
}

func NewButtonTracker(src ButtonSource) *ButtonTracker {
	return &ButtonTracker{src: src}
}

// Advance shifts the current mask into the previous slot and reads a new
// one. On error nothing changes.
func (t *ButtonTracker) Advance() (Buttons, error) {
	m, err := t.src.Buttons()
	if err != nil {
		return t.current, err
	}
	t.Push(m)
	return m, nil
}

// Push advances with a mask the caller already has.
func (t *ButtonTracker) Push(m Buttons) {
	t.previous, t.current = t.current, m
}

func (t *ButtonTracker) Current() Buttons  { return t.current }
func (t *ButtonTracker) Previous() Buttons { return t.previous }

func (t *ButtonTracker) IsDown(b Buttons) bool { return t.current.Has(b) }

// WasPressed reports whether b went from up to down between the last two
// advances.
func (t *ButtonTracker) WasPressed(b Buttons) bool {
	return t.previous&b == None && t.current&b == b
}

// WasReleased reports whether b went from down to up between the last two
// advances.
func (t *ButtonTracker) WasReleased(b Buttons) bool {
	return t.previous&b == b && t.current&b == None
}

// Pressed returns every button that went down between the last two advances.
func (t *ButtonTracker) Pressed() Buttons { return t.current &^ t.previous }

// Released returns every button that went up between the last two advances.
func (t *ButtonTracker) Released() Buttons { return t.previous &^ t.current }
