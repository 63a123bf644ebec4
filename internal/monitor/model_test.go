package monitor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/phantomgo/internal/coords"
	"github.com/san-kum/phantomgo/internal/forcefield"
	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/hd"
	"github.com/san-kum/phantomgo/internal/pen"
	"github.com/san-kum/phantomgo/internal/phantom"
	"github.com/san-kum/phantomgo/internal/simdevice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*simdevice.Device, *pen.Pen, Model) {
	t.Helper()
	opts := simdevice.DefaultOptions()
	opts.ManualClock = true
	dev, err := simdevice.New(opts)
	require.NoError(t, err)

	s, err := phantom.Connect(dev, hd.DefaultDevice, nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	require.NoError(t, s.Start())

	scene := forcefield.NewScene()
	require.NoError(t, scene.Add("orb", forcefield.NewRigidSphere(geom.V(0, 0, 10), 30)))
	p, err := pen.New(s, scene, coords.Identity(), pen.DefaultOptions())
	require.NoError(t, err)

	m := New(p, Options{Workspace: s.WorkspaceLimits(), Driver: dev})
	return dev, p, m
}

func press(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "pgup":
		msg = tea.KeyMsg{Type: tea.KeyPgUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func frame(m Model) Model {
	next, cmd := m.Update(frameMsg(time.Now()))
	if cmd == nil {
		panic("frame did not schedule the next one")
	}
	return next.(Model)
}

func TestModel_AttachToggle(t *testing.T) {
	dev, p, m := setup(t)

	m = press(m, " ")
	assert.True(t, p.Attached())
	assert.True(t, m.attached)

	dev.Step(3)
	m = frame(m)
	require.NotNil(t, m.frame.Sample)
	assert.Equal(t, uint64(1), m.frames)
	assert.Contains(t, m.View(), "SERVO ATTACHED")

	m = press(m, " ")
	assert.False(t, p.Attached())
	assert.Contains(t, m.View(), "SERVO DETACHED")
}

func TestModel_Keys(t *testing.T) {
	dev, p, m := setup(t)

	m = press(m, "d")
	assert.False(t, p.Scene().Damping())

	theme := m.theme
	m = press(m, "t")
	assert.Equal(t, (theme+1)%len(Themes), m.theme)

	m = press(m, "?")
	assert.True(t, strings.Contains(m.View(), "KEYBOARD SHORTCUTS"))

	before := dev.Target()
	m = press(m, "left")
	m = press(m, "pgup")
	assert.Equal(t, before.Add(geom.V(-nudgeStep, 0, -nudgeStep)), dev.Target())

	m = press(m, "3")
	require.NoError(t, p.Attach())
	dev.Step(1)
	m = frame(m)
	assert.True(t, m.frame.Buttons.Has(phantom.Button3))

	m = press(m, "m")
	assert.Equal(t, simdevice.MotionSweep, motions[m.motion])

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_DeviceError(t *testing.T) {
	dev, p, m := setup(t)
	require.NoError(t, p.Attach())

	dev.InjectError(hd.CommError)
	dev.Step(1)
	m = frame(m)
	require.Error(t, m.err)
	assert.False(t, m.attached)
	assert.Contains(t, m.View(), "ERROR")
}

func TestDownsample(t *testing.T) {
	v := []float64{1, 5, 2, 2, 9, 0}
	assert.Equal(t, []float64{5, 2, 9}, downsample(v, 3))
	assert.Equal(t, v, downsample(v, 10))
}

func TestThemeIndex(t *testing.T) {
	assert.Equal(t, 0, themeIndex("nope"))
	for i, th := range Themes {
		assert.Equal(t, i, themeIndex(th.Name))
	}
}
