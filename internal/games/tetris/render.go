package tetris

import (
	"fmt"

	"github.com/vovakirdan/tui-tetris/internal/core"
)

// Each grid cell is drawn two characters wide so blocks look square.
const cellW = 2

// sidebarW is the width of the next-piece and stats column.
const sidebarW = 16

// kindColors maps a kind to its screen color.
var kindColors = [KindCount + 1]core.Color{
	KindNone: core.ColorGray,
	KindI:    core.ColorCyan,
	KindO:    core.ColorYellow,
	KindT:    core.ColorMagenta,
	KindS:    core.ColorGreen,
	KindZ:    core.ColorRed,
	KindJ:    core.ColorBlue,
	KindL:    core.ColorOrange,
}

// ColorOf returns the screen color for a grid color id.
func ColorOf(id int) core.Color {
	if id < 0 || id > KindCount {
		return core.ColorDefault
	}
	return kindColors[id]
}

// minScreenSize returns the smallest screen that fits the well and sidebar.
func (g *Game) minScreenSize() (int, int) {
	w := g.cfg.Board.Width*cellW + 2 + 1 + sidebarW
	h := g.cfg.Board.Height + 2
	return w, h
}

// wellRect returns the well's border box, centered on screen.
func (g *Game) wellRect() core.Rect {
	minW, minH := g.minScreenSize()
	area := core.NewRect(0, 0, g.screenW, g.screenH).Centered(minW, minH)
	return core.NewRect(area.X, area.Y, g.cfg.Board.Width*cellW+2, g.cfg.Board.Height+2)
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		minW, minH := g.minScreenSize()
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small")
		dst.DrawTextCentered(dst.Height()/2, fmt.Sprintf("Need %dx%d, have %dx%d", minW, minH, dst.Width(), dst.Height()))
		return
	}

	state := g.engine.Snapshot()
	well := g.wellRect()

	dst.DrawBoxColor(well, core.ColorGray)
	g.renderGrid(dst, well, state)
	if !state.GameOver {
		g.renderGhost(dst, well, state.Current)
		g.renderPiece(dst, well, state.Current)
	}
	g.renderSidebar(dst, well, state)

	switch {
	case state.GameOver:
		g.renderOverlay(dst, well, "GAME OVER", "R to restart")
	case g.paused:
		g.renderOverlay(dst, well, "PAUSED", "P to resume")
	}
}

// cellPos converts a grid coordinate to the screen position of its left half.
func cellPos(well core.Rect, x, y int) (int, int) {
	return well.X + 1 + x*cellW, well.Y + 1 + y
}

func drawBlock(dst *core.Screen, sx, sy int, r rune, c core.Color) {
	for i := range cellW {
		dst.SetColor(sx+i, sy, r, c)
	}
}

func (g *Game) renderGrid(dst *core.Screen, well core.Rect, state GameState) {
	for y, row := range state.Grid {
		for x, id := range row {
			sx, sy := cellPos(well, x, y)
			if id == 0 {
				dst.SetColor(sx, sy, ' ', core.ColorGray)
				dst.SetColor(sx+1, sy, '·', core.ColorGray)
				continue
			}
			drawBlock(dst, sx, sy, '█', ColorOf(id))
		}
	}
}

func (g *Game) renderGhost(dst *core.Screen, well core.Rect, p Piece) {
	ghost := p
	ghost.Y = g.engine.GhostY()
	if ghost.Y == p.Y {
		return
	}
	for _, c := range ghost.Cells() {
		if c.Y < 0 {
			continue
		}
		sx, sy := cellPos(well, c.X, c.Y)
		drawBlock(dst, sx, sy, '░', ColorOf(p.Color()))
	}
}

func (g *Game) renderPiece(dst *core.Screen, well core.Rect, p Piece) {
	for _, c := range p.Cells() {
		if c.Y < 0 {
			continue
		}
		sx, sy := cellPos(well, c.X, c.Y)
		drawBlock(dst, sx, sy, '█', ColorOf(p.Color()))
	}
}

func (g *Game) renderSidebar(dst *core.Screen, well core.Rect, state GameState) {
	x := well.Right() + 1

	preview := core.NewRect(x, well.Y, sidebarW, MaskSize+2)
	dst.DrawBoxColor(preview, core.ColorGray)
	dst.DrawText(x+2, well.Y, " NEXT ")

	// Center the mask's occupied columns in the box
	mask := state.Next.Mask()
	minCol, maxCol := MaskSize, -1
	for my := range MaskSize {
		for mx := range MaskSize {
			if mask[my][mx] {
				minCol = min(minCol, mx)
				maxCol = max(maxCol, mx)
			}
		}
	}
	span := (maxCol - minCol + 1) * cellW
	ox := x + (sidebarW-span)/2 - minCol*cellW
	for my := range MaskSize {
		for mx := range MaskSize {
			if mask[my][mx] {
				drawBlock(dst, ox+mx*cellW, well.Y+1+my, '█', ColorOf(state.Next.Color()))
			}
		}
	}

	y := preview.Bottom() + 1
	dst.DrawText(x+1, y, fmt.Sprintf("Score %8d", state.Score))
	dst.DrawText(x+1, y+1, fmt.Sprintf("Level %8d", state.Level))
	dst.DrawText(x+1, y+2, fmt.Sprintf("Lines %8d", state.Lines))
	if g.preset != "" {
		dst.DrawText(x+1, y+4, fmt.Sprintf("Mode  %8s", g.preset))
	}
}

// renderOverlay draws a two-line message box over the middle of the well.
func (g *Game) renderOverlay(dst *core.Screen, well core.Rect, line1, line2 string) {
	w := max(len(line1), len(line2)) + 4
	box := well.Centered(w, 4)

	dst.DrawRect(box, ' ')
	dst.DrawBox(box)
	dst.DrawText(box.X+(w-len(line1))/2, box.Y+1, line1)
	dst.DrawText(box.X+(w-len(line2))/2, box.Y+2, line2)
}
