package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mask is the immutable set of cell indices that correspond to real device
// pixels. A nil Mask accepts every cell.
type Mask struct {
	valid      [Size]bool
	count      int
	loaded     bool
	failClosed bool
}

// NewMask builds a loaded mask from indices. Out of range indices are skipped.
func NewMask(indices []int) *Mask {
	m := &Mask{loaded: true}
	for _, i := range indices {
		if i < 0 || i >= Size {
			logrus.Debugf("mask: skipping index %d outside grid", i)
			continue
		}
		if !m.valid[i] {
			m.valid[i] = true
			m.count++
		}
	}
	return m
}

// Unloaded returns the mask used when the layout resource could not be read.
// With failClosed it rejects every cell, otherwise it accepts every cell.
func Unloaded(failClosed bool) *Mask {
	return &Mask{failClosed: failClosed}
}

// Contains reports whether index i is a device pixel.
func (m *Mask) Contains(i int) bool {
	if i < 0 || i >= Size {
		return false
	}
	if m == nil {
		return true
	}
	if !m.loaded {
		return !m.failClosed
	}
	return m.valid[i]
}

// Loaded reports whether the mask came from a layout resource.
func (m *Mask) Loaded() bool { return m != nil && m.loaded }

// Len returns the number of valid cells.
func (m *Mask) Len() int {
	switch {
	case m == nil:
		return Size
	case !m.loaded && m.failClosed:
		return 0
	case !m.loaded:
		return Size
	}
	return m.count
}

// Indices returns the valid indices in ascending order.
func (m *Mask) Indices() []int {
	out := make([]int, 0, m.Len())
	for i := 0; i < Size; i++ {
		if m.Contains(i) {
			out = append(out, i)
		}
	}
	return out
}

// LoadMask parses a layout resource. It accepts a JSON array of indices, a
// JSON object with an "indices" array, or integers separated by whitespace
// or commas.
func LoadMask(r io.Reader) (*Mask, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("layout is empty")
	}
	var indices []int
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &indices); err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
	case '{':
		var doc struct {
			Indices []int `json:"indices"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		indices = doc.Indices
	default:
		fields := strings.FieldsFunc(string(data), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
		})
		for _, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("parse layout: invalid index %q", f)
			}
			indices = append(indices, v)
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("layout lists no indices")
	}
	return NewMask(indices), nil
}

// LoadMaskFile reads the layout at path. Failures are logged and yield an
// unloaded mask so the editor stays usable.
func LoadMaskFile(path string, failClosed bool) *Mask {
	if path == "" {
		return Unloaded(failClosed)
	}
	f, err := os.Open(path)
	if err != nil {
		logrus.Warnf("load mask: %v", err)
		return Unloaded(failClosed)
	}
	defer f.Close()
	m, err := LoadMask(f)
	if err != nil {
		logrus.Warnf("load mask %s: %v", path, err)
		return Unloaded(failClosed)
	}
	logrus.WithField("cells", m.Len()).Debugf("loaded mask %s", path)
	return m
}
