//go:build !headless
// +build !headless

package monitor

import (
	"fmt"
	"image/color"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"nescore/internal/app"
	"nescore/internal/cpu"
)

var (
	backgroundColor = color.RGBA{16, 16, 24, 255}
	textColor       = color.RGBA{220, 220, 220, 255}
	dimColor        = color.RGBA{120, 120, 120, 255}
	onColor         = color.RGBA{0, 220, 90, 255}
	faultColor      = color.RGBA{230, 70, 70, 255}
)

// Monitor implements ebiten.Game over an application's runner
type Monitor struct {
	app    *app.Application
	runner *app.Runner

	page    uint8
	running bool
	status  string // last message shown under the registers

	clipboardOnce sync.Once
	clipboardOK   bool
}

// New creates a monitor showing the configured start page
func New(application *app.Application) *Monitor {
	return &Monitor{
		app:    application,
		runner: application.Runner(),
		page:   uint8(application.GetConfig().Monitor.Page),
		status: "ready",
	}
}

// Run opens the window and blocks until it is closed
func (m *Monitor) Run() error {
	scale := m.app.GetConfig().Monitor.Scale
	ebiten.SetWindowTitle("nescore monitor")
	ebiten.SetWindowSize(screenWidth*scale, screenHeight*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(m); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}

// Update implements ebiten.Game.Update
func (m *Monitor) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		m.running = false
		m.report(m.runner.StepInstruction())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		m.running = !m.running && m.runner.IsRunning()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		m.running = false
		m.report(m.runner.Restart())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		m.page++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		m.page--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		m.copyDump()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		m.report(m.app.SaveState(0))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		m.report(m.app.LoadState(0))
	}

	if m.running {
		err := m.runner.StepFrame()
		if err != nil || !m.runner.IsRunning() {
			m.running = false
			m.report(err)
		}
	}
	return nil
}

func (m *Monitor) report(err error) {
	if err != nil {
		m.status = err.Error()
		log.Printf("[MONITOR] %v", err)
		return
	}
	m.status = m.runner.CPU().State.String()
}

func (m *Monitor) copyDump() {
	m.clipboardOnce.Do(func() {
		m.clipboardOK = clipboard.Init() == nil
	})
	if !m.clipboardOK {
		m.status = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(dump(m.runner, m.page)))
	m.status = fmt.Sprintf("copied page $%02X", m.page)
}

// Draw implements ebiten.Game.Draw
func (m *Monitor) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	face := basicfont.Face7x13

	state := m.runner.GetCPUState()
	read := m.runner.CPU().MemRead
	y := lineHeight

	for _, line := range registerLines(state) {
		text.Draw(screen, line, face, charWidth, y, textColor)
		y += lineHeight
	}

	x := charWidth
	text.Draw(screen, "Flags", face, x, y, textColor)
	x += 7 * charWidth
	for _, token := range flagTokens(state.Status) {
		c := dimColor
		if token.enabled {
			c = onColor
		}
		text.Draw(screen, token.name, face, x, y, c)
		x += 2 * charWidth
	}
	y += 2 * lineHeight

	next := textColor
	if state.State == cpu.Faulted {
		next = faultColor
	}
	text.Draw(screen, disassemble(read, state.PC), face, charWidth, y, next)
	y += lineHeight
	text.Draw(screen, m.status, face, charWidth, y, dimColor)
	y += 2 * lineHeight

	for _, line := range memoryLines(read, m.page) {
		text.Draw(screen, line, face, charWidth, y, textColor)
		y += lineHeight
	}

	text.Draw(screen, helpLine, face, charWidth, screenHeight-lineHeight/2, dimColor)
}

// Layout implements ebiten.Game.Layout
func (m *Monitor) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
