package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderPanels())
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	b.WriteString(keyHint.Render("drag/wheel scroll  j/k step  J/K fling  r reset  i inner  q quit"))
	return b.String()
}

func (m *Model) renderPanels() string {
	ppr := m.cfg.PointsPerRow

	m.innerView.SetYOffset(int(m.inner.OffsetY() / ppr))
	m.outerView.SetContent(m.outerContent())
	m.outerView.SetYOffset(int(m.outer.OffsetY() / ppr))

	body := m.outerView.View()
	bar := track(m.outer.Progress(), m.outerView.Height)
	return lipgloss.JoinHorizontal(lipgloss.Top, body, " ", strings.Join(bar, "\n"))
}

// outerContent lays out the outer rows with the inner viewport spliced in
// at its frame.
func (m *Model) outerContent() string {
	ppr := m.cfg.PointsPerRow
	total := m.rows(m.outer.ContentHeight())
	top := int(m.inner.FrameTop() / ppr)

	innerLines := strings.Split(m.innerView.View(), "\n")
	innerBar := track(m.inner.Progress(), len(innerLines))

	lines := make([]string, 0, total)
	for row := 0; row < total; row++ {
		if i := row - top; i >= 0 && i < len(innerLines) {
			line := innerRow.Render(pad(innerLines[i], m.innerView.Width))
			lines = append(lines, "   "+line+" "+innerBar[i])
			continue
		}
		lines = append(lines, dim.Render(fmt.Sprintf("%6.0f ", float64(row)*ppr))+dimmer.Render(strings.Repeat("·", max(m.outerView.Width-8, 0))))
	}
	return strings.Join(lines, "\n")
}

func innerContent(rows int) string {
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = fmt.Sprintf(" inner row %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatus() string {
	o := m.coord.Offsets()

	lock := dim.Render("free")
	if m.coord.InnerLocked() {
		lock = yellow.Render("locked")
	}
	bound := green.Render("bound")
	if !m.innerBound {
		bound = red.Render("unbound")
	}

	parts := []string{
		dim.Render("outer ") + white.Render(fmt.Sprintf("%7.1f", o.Outer)),
		dim.Render("inner ") + white.Render(fmt.Sprintf("%7.1f", o.Inner)),
		lock,
		bound,
		cyan.Render(m.coord.State().String()),
		dim.Render("release ") + white.Render(fmt.Sprintf("%.0f pt/s", m.release)),
	}
	return strings.Join(parts, dimmer.Render("  │  "))
}
