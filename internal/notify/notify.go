// Package notify raises desktop notifications for completed uploads, imports
// and saves.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/maskpaint/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventUpload fires when the device accepts a frame.
	EventUpload Event = "upload"
	// EventImport fires when an image has replaced the grid.
	EventImport Event = "import"
	// EventSave fires when an export is written to disk.
	EventSave Event = "save"
)

// Environment overrides read by LoadPreferences.
const (
	EnvTitle      = "MASKPAINT_NOTIFY_TITLE"
	EnvUploadText = "MASKPAINT_NOTIFY_UPLOAD_TEXT"
	EnvImportText = "MASKPAINT_NOTIFY_IMPORT_TEXT"
	EnvSaveText   = "MASKPAINT_NOTIFY_SAVE_TEXT"
)

// Preferences holds the title and one body template per event. A template
// takes a single %s for the event detail.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built in texts.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Templates: map[Event]string{
			EventUpload: "Sent frame to %s",
			EventImport: "Imported %s",
			EventSave:   "Saved %s",
		},
	}
}

// LoadPreferences applies environment overrides to the defaults. lookup is
// normally os.LookupEnv.
func LoadPreferences(lookup func(string) (string, bool)) Preferences {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	prefs := DefaultPreferences()
	if v, ok := lookup(EnvTitle); ok && strings.TrimSpace(v) != "" {
		prefs.Title = strings.TrimSpace(v)
	}
	for env, ev := range map[string]Event{EnvUploadText: EventUpload, EnvImportText: EventImport, EnvSaveText: EventSave} {
		if v, ok := lookup(env); ok && strings.TrimSpace(v) != "" {
			prefs.Templates[ev] = strings.TrimSpace(v)
		}
	}
	return prefs
}

// SendFunc delivers one notification.
type SendFunc func(title, body string, opts platform.Options) error

// Notifier sends notifications for enabled events. A nil Notifier is silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    SendFunc
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	n := &Notifier{
		prefs:   Preferences{Title: prefs.Title, Templates: make(map[Event]string, len(prefs.Templates))},
		enabled: make(map[Event]bool),
		send:    platform.Notify,
	}
	for k, v := range prefs.Templates {
		n.prefs.Templates[k] = v
	}
	return n
}

// WithSender replaces the delivery function and returns n.
func (n *Notifier) WithSender(fn SendFunc) *Notifier {
	if n != nil && fn != nil {
		n.send = fn
	}
	return n
}

// Enable toggles event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Enabled reports whether event will notify.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Upload reports a frame accepted by url. preview, when non-nil, is shown
// as the notification icon.
func (n *Notifier) Upload(url string, preview image.Image) {
	if !n.Enabled(EventUpload) {
		return
	}
	opts := platform.Options{}
	if preview != nil {
		path, cleanup, err := writeIcon(preview)
		if err != nil {
			logrus.Debugf("notification icon: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventUpload, url, opts)
}

// Import reports an image import from source.
func (n *Notifier) Import(source string) {
	if strings.TrimSpace(source) == "" {
		source = "image"
	}
	n.dispatch(EventImport, source, platform.Options{})
}

// Save reports a file written to path.
func (n *Notifier) Save(path string) {
	if !n.Enabled(EventSave) {
		return
	}
	detail := path
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if strings.EqualFold(filepath.Ext(abs), ".png") {
			if _, err := os.Stat(abs); err == nil {
				opts.IconPath = abs
			}
		}
	}
	n.dispatch(EventSave, detail, opts)
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.Enabled(event) {
		return
	}
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := tmpl
	if strings.Contains(tmpl, "%s") {
		body = fmt.Sprintf(tmpl, strings.TrimSpace(detail))
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		logrus.Warnf("notification %s: %v", event, err)
	}
}

func writeIcon(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "maskpaint-frame-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.Debugf("remove notification icon: %v", err)
		}
	}, nil
}
