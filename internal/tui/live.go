// Package tui is the interactive dashboard: pick a scenario, watch the
// vehicle chase the reference path in a top-down view with the
// controller's predicted trajectory overlaid.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pathmpc/internal/config"
	"github.com/san-kum/pathmpc/internal/integrators"
	"github.com/san-kum/pathmpc/internal/mpc"
	"github.com/san-kum/pathmpc/internal/poly"
	"github.com/san-kum/pathmpc/internal/sim"
	"github.com/san-kum/pathmpc/internal/solver"
	"github.com/san-kum/pathmpc/internal/vehicle"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var scenarioInfo = map[string]string{
	"centerline": "straight road, on the line",
	"offset":     "one meter off the line",
	"scurve":     "winding road",
	"latency":    "one-step actuator delay",
}

type screen int

const (
	screenMenu screen = iota
	screenSim
)

type model struct {
	screen    screen
	cursor    int
	scenarios []string
	selected  string

	cfg        *config.Config
	ref        poly.Poly
	tracker    *sim.Tracker
	integrator sim.Integrator
	plant      *vehicle.Bicycle
	queue      []sim.Control

	running  bool
	paused   bool
	simState sim.State
	simTime  float64
	lastCmd  mpc.Command
	cteHist  []float64

	width  int
	height int
}

func NewApp() *model {
	names := []string{"centerline", "offset", "scurve", "latency"}
	return &model{
		screen:    screenMenu,
		scenarios: names,
		width:     80,
		height:    24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.screen != screenSim {
			return m, nil
		}
		if m.running && !m.paused {
			m.step()
		}
		if m.running {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.screen == screenMenu {
		return m.menuKey(msg)
	}
	return m.simKey(msg)
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenarios)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.scenarios[m.cursor]
		if err := m.start(); err != nil {
			return m, tea.Quit
		}
		m.screen = screenSim
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "escape":
		m.running = false
		m.screen = screenMenu
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		if err := m.start(); err != nil {
			return m, tea.Quit
		}
		return m, tea.ClearScreen
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) start() error {
	cfg := config.GetPreset(m.selected)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m.cfg = cfg
	m.ref = poly.Poly(cfg.Path)

	ctrl, err := mpc.New(cfg.Controller, solver.NewAugLag(cfg.SolverOptions()))
	if err != nil {
		return err
	}
	m.tracker = sim.NewTracker(context.Background(), ctrl, m.ref)

	if cfg.Sim.Integrator == "euler" {
		m.integrator = integrators.NewEuler()
	} else {
		m.integrator = integrators.NewRK4()
	}
	m.plant = vehicle.NewBicycle(cfg.Controller.Lf)

	m.queue = make([]sim.Control, cfg.Sim.LatencySteps)
	for i := range m.queue {
		m.queue[i] = make(sim.Control, 2)
	}

	init := cfg.GetInitState()
	m.simState = sim.State{init.X, init.Y, init.Psi, init.V}
	m.simTime = 0
	m.cteHist = m.cteHist[:0]
	m.running = true
	m.paused = false
	return nil
}

func (m *model) step() {
	if m.simTime >= m.cfg.Sim.Duration {
		m.paused = true
		return
	}

	u := m.tracker.Compute(m.simState, m.simTime)
	m.lastCmd = m.tracker.LastCommand()

	applied := u
	if len(m.queue) > 0 {
		applied = m.queue[0]
		m.queue = append(m.queue[1:], u)
	}

	dt := m.cfg.Controller.Dt
	m.simState = m.integrator.Step(m.plant, m.simState, applied, m.simTime, dt)
	m.simTime += dt

	cte := m.ref.Eval(m.simState[sim.IdxX]) - m.simState[sim.IdxY]
	m.cteHist = append(m.cteHist, cte)
	if len(m.cteHist) > 60 {
		m.cteHist = m.cteHist[1:]
	}
}

func (m model) View() string {
	if m.screen == screenMenu {
		return m.viewMenu()
	}
	return m.viewSim()
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("p a t h m p c") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.scenarios {
		desc := scenarioInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-14s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-14s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func (m model) viewSim() string {
	cw := m.width - 6
	ch := m.height - 11
	if cw < 50 {
		cw = 50
	}
	if ch < 12 {
		ch = 12
	}

	canvas := make([][]rune, ch)
	for i := range canvas {
		canvas[i] = make([]rune, cw)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	m.drawRoad(canvas, cw, ch)

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	if m.tracker.Failures() > 0 {
		statusText += "  " + red.Render(fmt.Sprintf("%d failed solves", m.tracker.Failures()))
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n",
		statusIcon, cyan.Render(m.selected), statusText))

	progress := m.simTime / m.cfg.Sim.Duration
	if progress > 1 {
		progress = 1
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	timeStr := fmt.Sprintf("%.1fs/%.0fs", m.simTime, m.cfg.Sim.Duration)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s\n\n", bar, dim.Render(timeStr)))

	for _, row := range canvas {
		b.WriteString("   " + string(row) + "\n")
	}

	cte := 0.0
	if len(m.cteHist) > 0 {
		cte = m.cteHist[len(m.cteHist)-1]
	}
	b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s  %s%s\n",
		dim.Render("v="), white.Render(fmt.Sprintf("%.1f", m.simState[sim.IdxV])),
		dim.Render("cte="), white.Render(fmt.Sprintf("%+.2f", cte)),
		dim.Render("δ="), magenta.Render(fmt.Sprintf("%+.3f", m.lastCmd.Steering)),
		dim.Render("a="), magenta.Render(fmt.Sprintf("%+.2f", m.lastCmd.Accel))))

	if len(m.cteHist) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("cte"), cyan.Render(sparkline(m.cteHist, 24))))
	}

	b.WriteString("\n" + dim.Render("   space pause  r reset  q back") + "\n")

	return b.String()
}

// drawRoad renders a window of the reference path around the vehicle,
// the driven position and the predicted horizon.
func (m model) drawRoad(canvas [][]rune, w, h int) {
	vx := m.simState[sim.IdxX]
	vy := m.simState[sim.IdxY]

	// Window: vehicle sits a quarter in from the left, vertical range
	// follows the local path.
	xSpan := 40.0
	ySpan := 10.0
	x0 := vx - xSpan/4
	yMid := m.ref.Eval(vx)

	toCanvas := func(x, y float64) (int, int) {
		cx := int((x - x0) / xSpan * float64(w))
		cy := h/2 - int((y-yMid)/ySpan*float64(h))
		return cx, cy
	}

	for cx := 0; cx < w; cx++ {
		x := x0 + float64(cx)/float64(w)*xSpan
		_, cy := toCanvas(x, m.ref.Eval(x))
		set(canvas, cx, cy, '·', w, h)
	}

	for _, pt := range m.lastCmd.Predicted {
		cx, cy := toCanvas(pt.X, pt.Y)
		set(canvas, cx, cy, '∘', w, h)
	}

	cx, cy := toCanvas(vx, vy)
	heading := m.simState[sim.IdxPsi]
	glyph := '▶'
	switch {
	case heading > math.Pi/8:
		glyph = '◥'
	case heading < -math.Pi/8:
		glyph = '◢'
	}
	set(canvas, cx, cy, glyph, w, h)
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func set(canvas [][]rune, x, y int, c rune, w, h int) {
	if x >= 0 && x < w && y >= 0 && y < h {
		canvas[y][x] = c
	}
}

func Run() error {
	p := tea.NewProgram(NewApp(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
