//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce sync.Once
	initErr  error
	owner    *x11Owner
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = ErrNoDisplay
			return
		}
		o := &x11Owner{}
		if err := o.open(); err != nil {
			initErr = fmt.Errorf("clipboard: %w", err)
			return
		}
		owner = o
	})
	return initErr
}

func write(f format, data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.offer(f, data)
}

func read(f format) ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	if f == formatPNG {
		return owner.request(owner.atoms.png)
	}
	data, err := owner.request(owner.atoms.utf8)
	if err != nil {
		return owner.request(xproto.AtomString)
	}
	return data, nil
}

// x11Owner holds the selection on behalf of the editor and answers
// conversion requests from other clients.
type x11Owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atoms

	mu   sync.RWMutex
	kind format
	data []byte
}

type atoms struct {
	clipboard, targets, utf8, textPlain, png, property xproto.Atom
}

func (o *x11Owner) open() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return err
	}
	mask := uint32(xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify)
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, win, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{mask}).Check(); err != nil {
		conn.Close()
		return err
	}
	a, err := intern(conn)
	if err != nil {
		xproto.DestroyWindow(conn, win)
		conn.Close()
		return err
	}
	o.conn, o.window, o.atoms = conn, win, a
	go o.serve()
	return nil
}

func intern(conn *xgb.Conn) (atoms, error) {
	names := []string{"CLIPBOARD", "TARGETS", "UTF8_STRING", "text/plain;charset=utf-8", "image/png", "MASKPAINT_SELECTION"}
	out := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atoms{}, fmt.Errorf("intern %s: %w", name, err)
		}
		out[i] = reply.Atom
	}
	return atoms{clipboard: out[0], targets: out[1], utf8: out[2], textPlain: out[3], png: out[4], property: out[5]}, nil
}

func (o *x11Owner) offer(f format, data []byte) error {
	o.mu.Lock()
	o.kind = f
	o.data = append([]byte(nil), data...)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *x11Owner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.data = nil
			o.mu.Unlock()
		}
	}
}

func (o *x11Owner) answer(e xproto.SelectionRequestEvent) {
	prop := e.Property
	if prop == xproto.AtomNone {
		prop = e.Target
	}
	o.mu.RLock()
	kind, data := o.kind, o.data
	o.mu.RUnlock()

	var (
		typ     xproto.Atom
		fmtBits byte = 8
		payload []byte
	)
	isText := kind == formatText && len(data) > 0
	isPNG := kind == formatPNG && len(data) > 0
	switch {
	case e.Target == o.atoms.targets:
		list := []xproto.Atom{o.atoms.targets}
		if isText {
			list = append(list, o.atoms.utf8, xproto.AtomString, o.atoms.textPlain)
		}
		if isPNG {
			list = append(list, o.atoms.png)
		}
		payload = make([]byte, 4*len(list))
		for i, a := range list {
			xgb.Put32(payload[i*4:], uint32(a))
		}
		typ, fmtBits = xproto.AtomAtom, 32
	case isText && (e.Target == o.atoms.utf8 || e.Target == xproto.AtomString || e.Target == o.atoms.textPlain):
		payload, typ = data, o.atoms.utf8
	case isPNG && e.Target == o.atoms.png:
		payload, typ = data, o.atoms.png
	default:
		prop = xproto.AtomNone
	}

	if prop != xproto.AtomNone {
		n := uint32(len(payload))
		if fmtBits == 32 {
			n /= 4
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, typ, fmtBits, n, payload)
	}
	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  prop,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

// request converts the clipboard selection to target through a scratch
// window on a separate connection.
func (o *x11Owner) request(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, win, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, win)

	if err := xproto.ConvertSelectionChecked(conn, win, o.atoms.clipboard, target, o.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, ErrEmpty
		}
		reply, perr := xproto.GetProperty(conn, true, win, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if perr != nil {
			return nil, perr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}
