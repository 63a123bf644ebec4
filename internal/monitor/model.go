package monitor

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/phantomgo/internal/forcefield"
	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/pen"
	"github.com/san-kum/phantomgo/internal/phantom"
	"github.com/san-kum/phantomgo/internal/simdevice"
)

const (
	canvasCols = 40
	canvasRows = 16
	nudgeStep  = 5.0  // mm
	forceScale = 20.0 // mm drawn per N
	plotWidth  = 40
)

var motions = []simdevice.Motion{simdevice.MotionHold, simdevice.MotionSweep, simdevice.MotionCircle}

// Driver moves the hand of a simulated device. [*simdevice.Device]
// implements it.
type Driver interface {
	Nudge(delta geom.Vec3)
	ToggleButtons(mask int32)
	SetMotion(m simdevice.Motion)
}

type Options struct {
	Title     string
	FrameRate int
	Theme     string
	Workspace phantom.Workspace
	// Driver is nil for real hardware.
	Driver Driver
	// Motion is the hand motion the driver starts with.
	Motion simdevice.Motion
}

type frameMsg time.Time

// Model is the Bubble Tea model of the monitor.
type Model struct {
	pen    *pen.Pen
	opts   Options
	theme  int
	styles styles
	canvas *canvas

	frame    pen.Frame
	frames   uint64
	err      error
	attached bool
	motion   int
	showHelp bool
}

func New(p *pen.Pen, opts Options) Model {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 60
	}
	if opts.Title == "" {
		opts.Title = "phantom"
	}
	theme := themeIndex(opts.Theme)
	motion := max(slices.Index(motions, opts.Motion), 0)
	return Model{
		motion:   motion,
		pen:      p,
		opts:     opts,
		theme:    theme,
		styles:   newStyles(Themes[theme]),
		canvas:   newCanvas(canvasCols, canvasRows),
		attached: p.Attached(),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FrameRate), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg.String())
	case frameMsg:
		m.step()
		return m, m.tick()
	}
	return m, nil
}

func (m Model) key(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		var err error
		if m.pen.Attached() {
			err = m.pen.Detach()
		} else {
			err = m.pen.Attach()
		}
		m.err = err
		m.attached = m.pen.Attached()
	case "d":
		sc := m.pen.Scene()
		sc.SetDamping(!sc.Damping())
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
		m.styles = newStyles(Themes[m.theme])
	case "?":
		m.showHelp = !m.showHelp
	}

	if d := m.opts.Driver; d != nil {
		switch k {
		case "left":
			d.Nudge(geom.V(-nudgeStep, 0, 0))
		case "right":
			d.Nudge(geom.V(nudgeStep, 0, 0))
		case "up":
			d.Nudge(geom.V(0, nudgeStep, 0))
		case "down":
			d.Nudge(geom.V(0, -nudgeStep, 0))
		case "pgup":
			d.Nudge(geom.V(0, 0, -nudgeStep))
		case "pgdown":
			d.Nudge(geom.V(0, 0, nudgeStep))
		case "1", "2", "3", "4":
			d.ToggleButtons(1 << (k[0] - '1'))
		case "m":
			m.motion = (m.motion + 1) % len(motions)
			d.SetMotion(motions[m.motion])
		}
	}
	return m, nil
}

// step is one outer frame.
func (m *Model) step() {
	fr, err := m.pen.Frame()
	m.attached = m.pen.Attached()
	if err != nil {
		m.err = err
		return
	}
	m.frame = fr
	m.frames++
}

// project maps a device point onto the canvas, looking at the XY plane.
func (m Model) project(p geom.Vec3) (int, int) {
	w, h := m.canvas.size()
	ws := m.opts.Workspace
	sx := float64(w-1) / (ws.Max.X - ws.Min.X)
	sy := float64(h-1) / (ws.Max.Y - ws.Min.Y)
	return int((p.X - ws.Min.X) * sx), int((ws.Max.Y - p.Y) * sy)
}

func (m Model) draw() {
	c := m.canvas
	c.clear()
	ws := m.opts.Workspace
	if ws.Max.X <= ws.Min.X || ws.Max.Y <= ws.Min.Y {
		return
	}

	x0, y0 := m.project(ws.UsableMin)
	x1, y1 := m.project(ws.UsableMax)
	c.rect(x0, y0, x1, y1)

	w, _ := c.size()
	scale := float64(w-1) / (ws.Max.X - ws.Min.X)
	for _, e := range m.pen.Scene().Elements() {
		if !e.Enabled {
			continue
		}
		switch f := e.Field.(type) {
		case forcefield.RigidSphere:
			cx, cy := m.project(f.Center)
			c.circle(cx, cy, f.Radius*scale)
		case forcefield.LogField:
			cx, cy := m.project(f.Target)
			c.dot(cx, cy)
		}
	}

	if smp := m.frame.Sample; smp != nil {
		tx, ty := m.project(smp.Tip)
		c.dot(tx, ty)
		fx, fy := m.project(smp.Tip.Add(smp.Force.Scale(forceScale)))
		c.line(tx, ty, fx, fy)
	}
}

func vec(v geom.Vec3) string {
	return fmt.Sprintf("%7.2f %7.2f %7.2f", v.X, v.Y, v.Z)
}

// View renders the monitor.
func (m Model) View() string {
	st := m.styles
	m.draw()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.opts.Title)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(st.err.Render("ERROR "+m.err.Error()) + "\n\n")
	case m.attached:
		s.WriteString(st.ok.Render("SERVO ATTACHED") + "\n\n")
	default:
		s.WriteString(st.warn.Render("SERVO DETACHED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	fr := m.frame
	row("Position", vec(fr.Position))
	row("Tip", vec(fr.Tip))
	row("Rotation", fr.Rotation.String())
	force := fmt.Sprintf("%s  |%.2f N|", vec(fr.Force), fr.Force.Length())
	if fr.Sample != nil && fr.Sample.Clamped {
		force += " " + st.warn.Render("CLAMPED")
	}
	row("Force", force)
	row("Buttons", fr.Buttons.String())
	row("Damping", fmt.Sprintf("%v", m.pen.Scene().Damping()))
	if m.opts.Driver != nil {
		row("Motion", string(motions[m.motion]))
	}
	s.WriteString("\n")

	rec := m.pen.Metrics()
	for _, v := range rec.Values() {
		row(v.Name, fmt.Sprintf("%.4f", v.Value))
	}
	row("ticks", fmt.Sprintf("%d", rec.Ticks()))
	if hz, amp := rec.Spectrum().Dominant(); amp > 0 {
		row("dominant", fmt.Sprintf("%.1f Hz %.3f N", hz, amp))
	}

	if hist := rec.History(); len(hist) > 1 {
		chart := asciigraph.Plot(downsample(hist, plotWidth),
			asciigraph.Height(5), asciigraph.Width(plotWidth), asciigraph.Caption("|F| [N]"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	hint := "SP:Attach D:Damping T:Theme ?:Help Q:Quit"
	if m.opts.Driver != nil {
		hint += "\n←→↑↓ PgUp/PgDn:Nudge 1-4:Buttons M:Motion"
	}
	s.WriteString(st.muted.Render(hint))

	view := lipgloss.JoinHorizontal(lipgloss.Top,
		st.panel.Render(m.canvas.String()),
		lipgloss.NewStyle().Padding(0, 2).Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

const helpText = `
╔══════════════════════════════════════════╗
║             KEYBOARD SHORTCUTS           ║
╠══════════════════════════════════════════╣
║  Space      - Attach/detach servo loop   ║
║  D          - Toggle damping             ║
║  T          - Cycle themes               ║
║  Arrows     - Nudge hand in X/Y (sim)    ║
║  PgUp/PgDn  - Nudge hand in Z (sim)      ║
║  1-4        - Toggle buttons (sim)       ║
║  M          - Cycle hand motion (sim)    ║
║  ?          - Toggle this help           ║
║  Q          - Quit                       ║
╚══════════════════════════════════════════╝`

// downsample keeps the peak of each bucket so short spikes stay visible.
func downsample(v []float64, n int) []float64 {
	if len(v) <= n {
		return v
	}
	out := make([]float64, n)
	for i := range out {
		lo, hi := i*len(v)/n, (i+1)*len(v)/n
		peak := math.Inf(-1)
		for _, x := range v[lo:hi] {
			peak = max(peak, x)
		}
		out[i] = peak
	}
	return out
}
