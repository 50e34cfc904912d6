package ui

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// Run opens the window and blocks until it closes.
func (a *App) Run() error {
	var runErr error
	driver.Main(func(s screen.Screen) { runErr = a.Main(s) })
	return runErr
}

// Main runs the event loop on s.
func (a *App) Main(s screen.Screen) error {
	if a.sess == nil {
		return fmt.Errorf("ui: no session bound")
	}
	defer a.notifyClose()

	win := a.Layout().Window
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: win.X, Height: win.Y, Title: "Mask Paint"})
	if err != nil {
		return fmt.Errorf("ui: new window: %w", err)
	}
	defer w.Release()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	var buf screen.Buffer
	defer func() {
		if buf != nil {
			buf.Release()
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}
		case size.Event:
			a.Resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			win := a.Layout().Window
			if buf == nil || buf.Size() != win {
				if buf != nil {
					buf.Release()
				}
				if buf, err = s.NewBuffer(win); err != nil {
					logrus.Errorf("new buffer: %v", err)
					buf = nil
					continue
				}
			}
			a.Render(buf.RGBA())
			w.Upload(image.Point{}, buf, buf.Bounds())
			w.Publish()
		case mouse.Event:
			if a.OnMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			repaint, quit := a.OnKey(e)
			if quit {
				return nil
			}
			if repaint {
				w.Send(paint.Event{})
			}
		case error:
			logrus.Errorf("window: %v", e)
		}
	}
}
