package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoPath is returned when saving a document that was never given a path.
var ErrNoPath = errors.New("document has no path")

// Document is the text buffer behind a CSV view. It tracks the last saved
// contents and notifies subscribers whenever the text changes.
type Document struct {
	path      string
	text      string
	savedText string
	nextID    int
	listeners map[int]func(string)
}

// NewDocument creates an unsaved document holding text.
func NewDocument(path, text string) *Document {
	return &Document{
		path:      path,
		text:      text,
		listeners: make(map[int]func(string)),
	}
}

// Open reads path into a new document. A missing file yields an empty,
// clean document that will be created on the first save.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(path, ""), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	d := NewDocument(path, string(data))
	d.savedText = d.text
	return d, nil
}

// Path returns the file backing the document, "" if none.
func (d *Document) Path() string {
	return d.path
}

// SetPath changes the file the document saves to.
func (d *Document) SetPath(path string) {
	d.path = path
}

// Title returns the file base name without extension, "CSV" for an unnamed
// document.
func (d *Document) Title() string {
	if d.path == "" {
		return "CSV"
	}
	base := filepath.Base(d.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Text returns the current contents.
func (d *Document) Text() string {
	return d.text
}

// SetText replaces the contents and notifies subscribers if they changed.
func (d *Document) SetText(text string) {
	if text == d.text {
		return
	}
	d.text = text
	for _, id := range d.listenerIDs() {
		if fn, ok := d.listeners[id]; ok {
			fn(text)
		}
	}
}

// Subscribe registers fn to run after every change. The returned function
// removes the subscription.
func (d *Document) Subscribe(fn func(string)) (cancel func()) {
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	return func() { delete(d.listeners, id) }
}

// Subscribers returns the number of active subscriptions.
func (d *Document) Subscribers() int {
	return len(d.listeners)
}

func (d *Document) listenerIDs() []int {
	ids := make([]int, 0, len(d.listeners))
	for i := 0; i < d.nextID; i++ {
		if _, ok := d.listeners[i]; ok {
			ids = append(ids, i)
		}
	}
	return ids
}

// Dirty reports whether the text differs from what was last loaded or saved.
func (d *Document) Dirty() bool {
	return d.text != d.savedText
}

// Save writes the text back to its file. The write goes through a temporary
// file in the same directory so a crash never leaves a truncated file.
func (d *Document) Save() error {
	if d.path == "" {
		return ErrNoPath
	}
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(d.text); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", d.path, err)
	}
	if info, err := os.Stat(d.path); err == nil {
		os.Chmod(tmp.Name(), info.Mode().Perm())
	} else {
		os.Chmod(tmp.Name(), 0644)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", d.path, err)
	}
	d.savedText = d.text
	return nil
}

// MatchesDisk reports whether the file still holds the text last loaded or
// saved. Change notifications caused by our own saves satisfy this.
func (d *Document) MatchesDisk() (bool, error) {
	if d.path == "" {
		return false, ErrNoPath
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", d.path, err)
	}
	return string(data) == d.savedText, nil
}

// Reload re-reads the file from disk. It reports whether the text changed.
// Unsaved edits are discarded.
func (d *Document) Reload() (bool, error) {
	if d.path == "" {
		return false, ErrNoPath
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", d.path, err)
	}
	text := string(data)
	d.savedText = text
	if text == d.text {
		return false, nil
	}
	d.SetText(text)
	return true, nil
}
