// Package tui hosts the coordinator in a terminal: the outer panel fills the
// screen and the inner panel is drawn as a block inside its content.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/nestscroll/internal/config"
	"github.com/san-kum/nestscroll/internal/gesture"
	"github.com/san-kum/nestscroll/internal/panel"
	"github.com/san-kum/nestscroll/internal/scroll"
	"github.com/san-kum/nestscroll/pkg/logger"
)

const (
	statusRows = 2
	wheelRows  = 3
	flingRows  = 12
	maxFrameDt = 100 * time.Millisecond
)

type tickMsg time.Time

type Option func(*Model)

func WithObserver(o scroll.Observer) Option {
	return func(m *Model) { m.observers = append(m.observers, o) }
}

func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock replaces time.Now for gesture timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

type Model struct {
	cfg   *config.Config
	outer *panel.Surface
	inner *panel.Surface
	coord *scroll.Coordinator

	tracker    *gesture.Tracker
	innerBound bool
	release    float64
	lastTick   time.Time

	outerView viewport.Model
	innerView viewport.Model

	observers []scroll.Observer
	log       logger.Logger
	now       func() time.Time

	width  int
	height int
}

func New(cfg *config.Config, opts ...Option) *Model {
	l := cfg.Layout
	m := &Model{
		cfg:        cfg,
		outer:      panel.NewOuter(l.OuterContent, l.OuterViewport),
		inner:      panel.NewInner(l.InnerTop, l.InnerContent, l.InnerViewport),
		tracker:    gesture.NewTracker(gesture.DefaultWindow),
		innerBound: true,
		log:        logger.Nop(),
		now:        time.Now,
		width:      80,
		height:     24,
	}
	for _, opt := range opts {
		opt(m)
	}

	copts := []scroll.Option{
		scroll.WithInnerPanel(m.inner),
		scroll.WithDecelerationRate(cfg.DecelerationRate),
		scroll.WithResetLockOnBegin(cfg.ResetLockOnBegin),
		scroll.WithLogger(m.log.Named("scroll")),
	}
	for _, o := range m.observers {
		copts = append(copts, scroll.WithObserver(o))
	}
	m.coord = scroll.NewCoordinator(m.outer, copts...)

	m.innerView = viewport.New(m.width, m.rows(l.InnerViewport))
	m.innerView.SetContent(innerContent(m.rows(l.InnerContent)))
	m.outerView = viewport.New(m.width, m.rows(l.OuterViewport))
	return m
}

func (m *Model) Init() tea.Cmd {
	m.lastTick = m.now()
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.cfg.FPS), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		now := time.Time(msg)
		dt := now.Sub(m.lastTick)
		m.lastTick = now
		if dt > maxFrameDt {
			dt = maxFrameDt
		}
		if dt > 0 {
			m.coord.Tick(dt)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "j", "down":
		m.wheel(-wheelRows)
	case "k", "up":
		m.wheel(wheelRows)
	case "J":
		m.fling(-flingRows)
	case "K":
		m.fling(flingRows)
	case "r":
		m.coord.ScrollTo(scroll.Offsets{})
		m.release = 0
	case "i":
		m.toggleInner()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	y := float64(msg.Y) * m.cfg.PointsPerRow
	at := m.now()

	switch {
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		m.wheel(-wheelRows)
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		m.wheel(wheelRows)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.coord.Handle(m.tracker.Begin(y, at))
	case msg.Action == tea.MouseActionMotion:
		if s, ok := m.tracker.Move(y, at); ok {
			m.coord.Handle(s)
		}
	case msg.Action == tea.MouseActionRelease:
		if s, ok := m.tracker.End(y, at); ok {
			m.release = s.VelocityY
			m.coord.Handle(s)
		}
	}
}

// wheel plays a short drag of the given rows with no release velocity.
// Positive rows move the content down.
func (m *Model) wheel(rows int) {
	t := float64(rows) * m.cfg.PointsPerRow
	m.coord.Handle(scroll.Sample{Phase: scroll.PhaseBegin})
	m.coord.Handle(scroll.Sample{Phase: scroll.PhaseChanged, TranslationY: t})
	m.coord.Handle(scroll.Sample{Phase: scroll.PhaseEnded, TranslationY: t})
	m.release = 0
}

func (m *Model) fling(rows int) {
	f := gesture.Fling{
		Distance: float64(rows) * m.cfg.PointsPerRow,
		Duration: 80 * time.Millisecond,
		Steps:    4,
	}
	samples, err := f.Samples()
	if err != nil {
		m.log.Warn(context.Background(), "fling rejected", logger.Error(err))
		return
	}
	for _, ts := range samples {
		m.coord.Handle(ts.Sample)
	}
	m.release = samples[len(samples)-1].Sample.VelocityY
}

func (m *Model) toggleInner() {
	m.innerBound = !m.innerBound
	if m.innerBound {
		m.coord.SetInnerPanel(m.inner)
	} else {
		m.coord.SetInnerPanel(nil)
	}
	m.log.Info(context.Background(), "inner panel binding changed", logger.Bool("bound", m.innerBound))
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	rows := max(height-statusRows, 1)

	if err := m.coord.ResizeOuter(m.outer.ContentHeight(), float64(rows)*m.cfg.PointsPerRow); err != nil {
		m.log.Warn(context.Background(), "outer resize failed", logger.Error(err))
	}
	m.outerView.Width = width - 2
	m.outerView.Height = rows
	m.innerView.Width = width - 8
}

func (m *Model) rows(points float64) int {
	return max(int(points/m.cfg.PointsPerRow), 1)
}
