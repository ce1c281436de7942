// Package tray presents readings in a small window and the system tray.
package tray

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const (
	WindowTitle  = "Ping Monitor"
	StatusText   = "Monitoring..."
	InitialLabel = "Ping N/A"

	iconName = "pingtray.png"
)

var windowSize = fyne.NewSize(250, 150)

// Actions are the callbacks triggered by the window and the tray menu.
// Nil callbacks are skipped.
type Actions struct {
	// Show runs when the tray "Show" item is chosen.
	Show func()
	// Close runs when the user closes the window. The window is hidden, not
	// destroyed.
	Close func()
	// Exit runs when the tray "Exit" item is chosen. When nil the app quits
	// directly.
	Exit func()
}

// Presenter owns the window, its labels and the tray icon.
type Presenter struct {
	app    fyne.App
	desk   desktop.App // nil when the driver has no system tray
	window fyne.Window
	status *widget.Label
	ping   *widget.Label
	logger *zap.Logger

	mu      sync.Mutex
	actions Actions
}

// New builds the window and tray menu on app.
func New(app fyne.App, logger *zap.Logger) *Presenter {
	p := &Presenter{
		app:    app,
		window: app.NewWindow(WindowTitle),
		status: widget.NewLabel(StatusText),
		ping:   widget.NewLabel(InitialLabel),
		logger: logger,
	}

	p.window.SetContent(container.NewVBox(p.status, p.ping))
	p.window.Resize(windowSize)
	p.window.SetCloseIntercept(p.onClose)

	if desk, ok := app.(desktop.App); ok {
		p.desk = desk
		desk.SetSystemTrayMenu(p.menu())
	} else {
		logger.Warn("system tray not supported by driver, window only")
	}
	return p
}

func (p *Presenter) menu() *fyne.Menu {
	show := fyne.NewMenuItem("Show", p.onShow)
	exit := fyne.NewMenuItem("Exit", p.onExit)
	exit.IsQuit = true
	return fyne.NewMenu(WindowTitle, show, exit)
}

// Bind registers the window and menu callbacks.
func (p *Presenter) Bind(a Actions) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = a
}

func (p *Presenter) bound() Actions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.actions
}

func (p *Presenter) onShow() {
	p.window.Show()
	if fn := p.bound().Show; fn != nil {
		fn()
	}
}

func (p *Presenter) onClose() {
	p.window.Hide()
	if fn := p.bound().Close; fn != nil {
		fn()
	}
}

func (p *Presenter) onExit() {
	p.logger.Info("exit requested from tray")
	if fn := p.bound().Exit; fn != nil {
		fn()
		return
	}
	p.app.Quit()
}

// Present replaces the latency label and the tray icon. Safe to call from
// any goroutine.
func (p *Presenter) Present(label string, icon []byte) {
	fyne.Do(func() { p.apply(label, icon) })
}

func (p *Presenter) apply(label string, icon []byte) {
	p.ping.SetText(label)
	if p.desk != nil && len(icon) > 0 {
		p.desk.SetSystemTrayIcon(fyne.NewStaticResource(iconName, icon))
	}
}

// SetVisible shows or hides the window. Safe to call from any goroutine.
func (p *Presenter) SetVisible(visible bool) {
	fyne.Do(func() {
		if visible {
			p.window.Show()
		} else {
			p.window.Hide()
		}
	})
}

// Label returns the current latency label text.
func (p *Presenter) Label() string {
	return p.ping.Text
}

// Run shows the window and blocks in the toolkit event loop until the app
// quits.
func (p *Presenter) Run() {
	p.window.Show()
	p.app.Run()
}
