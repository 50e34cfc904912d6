//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"net/url"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

const portalTimeout = 2 * time.Minute

func portalScreenshot(interactive bool) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("dbus connect: %w", err)
	}
	defer conn.Close()

	opts := map[string]dbus.Variant{
		"interactive":  dbus.MakeVariant(interactive),
		"modal":        dbus.MakeVariant(interactive),
		"handle_token": dbus.MakeVariant(fmt.Sprintf("maskpaint%d", time.Now().UnixNano())),
	}
	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	var handle dbus.ObjectPath
	if err := obj.Call("org.freedesktop.portal.Screenshot.Screenshot", 0, "", opts).Store(&handle); err != nil {
		return nil, fmt.Errorf("portal screenshot: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(handle),
		dbus.WithMatchInterface("org.freedesktop.portal.Request"),
		dbus.WithMatchMember("Response"),
	); err != nil {
		return nil, fmt.Errorf("portal subscribe: %w", err)
	}
	sigc := make(chan *dbus.Signal, 1)
	conn.Signal(sigc)

	timer := time.NewTimer(portalTimeout)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return nil, errors.New("portal screenshot: timed out")
		case sig, ok := <-sigc:
			if !ok {
				return nil, errors.New("portal screenshot: bus closed")
			}
			if sig.Path != handle || len(sig.Body) < 2 {
				continue
			}
			if code, _ := sig.Body[0].(uint32); code != 0 {
				return nil, fmt.Errorf("portal screenshot: cancelled (code %d)", code)
			}
			res, _ := sig.Body[1].(map[string]dbus.Variant)
			uri, _ := res["uri"].Value().(string)
			if uri == "" {
				return nil, errors.New("portal screenshot: response missing uri")
			}
			return loadPortalFile(uri)
		}
	}
}

func loadPortalFile(uri string) (*image.RGBA, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("portal uri %q: %w", uri, err)
	}
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defer func() {
		if err := os.Remove(u.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("remove %s: %v", u.Path, err)
		}
	}()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u.Path, err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
