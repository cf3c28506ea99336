// Package csvview drives a CSV view through a small set of host
// capabilities. The host supplies the text buffer, the two render surfaces
// and persistence; the controller decides what to show and owns the sort
// state and the lifetime of the live-edit surface.
package csvview

import (
	"log/slog"

	"golang.org/x/text/language"

	"rainbow-csv/internal/table"
)

// Mode is the active presentation.
type Mode int

const (
	EditMode Mode = iota
	PreviewMode
)

func (m Mode) String() string {
	if m == PreviewMode {
		return "preview"
	}
	return "edit"
}

// ToggleLabel is the label of the control that switches away from m.
func (m Mode) ToggleLabel() string {
	if m == PreviewMode {
		return "Edit"
	}
	return "Preview"
}

// TextSource is the document buffer. Subscribe registers the mutation hook
// and returns a function that removes it.
type TextSource interface {
	Text() string
	SetText(text string)
	Subscribe(fn func(text string)) (cancel func())
}

// Surface is a live-edit surface acquired from the host. Close detaches it
// and any listeners it installed.
type Surface interface {
	Text() string
	SetText(text string)
	Close()
}

// RenderTarget paints the controller's output.
type RenderTarget interface {
	ShowPreview(grid table.Grid)
	ShowEmpty()
	AttachEditor(text string) Surface
}

// Persister asks the host to write the buffer back. How and when it does so
// is up to the host.
type Persister interface {
	RequestPersist()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLanguage sets the collation used when sorting text columns.
func WithLanguage(tag language.Tag) Option {
	return func(c *Controller) { c.lang = tag }
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithMode sets the mode used by Open.
func WithMode(m Mode) Option {
	return func(c *Controller) { c.mode = m }
}

// Controller is the view logic for one open document. It is not safe for
// concurrent use.
type Controller struct {
	source  TextSource
	target  RenderTarget
	persist Persister
	sort    *table.SortHolder
	lang    language.Tag
	logger  *slog.Logger

	mode        Mode
	surface     Surface
	unsubscribe func()
	closed      bool
}

// New creates a controller. sort is the injected sort state holder; a nil
// holder gets a fresh one that resets on mode exit.
func New(source TextSource, target RenderTarget, persist Persister, sort *table.SortHolder, opts ...Option) *Controller {
	if sort == nil {
		sort = table.NewSortHolder(true)
	}
	c := &Controller{
		source:  source,
		target:  target,
		persist: persist,
		sort:    sort,
		lang:    language.Und,
		logger:  slog.New(slog.DiscardHandler),
		mode:    EditMode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open subscribes to buffer mutations and renders the initial mode.
func (c *Controller) Open() {
	if c.unsubscribe == nil && !c.closed {
		c.unsubscribe = c.source.Subscribe(c.mutated)
	}
	c.Render()
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// SortState returns the sort currently applied to the preview.
func (c *Controller) SortState() table.SortState {
	return c.sort.State()
}

// Editing reports whether a live-edit surface is held.
func (c *Controller) Editing() bool {
	return c.surface != nil
}

// Render repaints the active mode. Calling it again without changes
// produces the same output.
func (c *Controller) Render() {
	if c.closed {
		return
	}
	text := c.source.Text()

	if c.mode == PreviewMode {
		c.releaseSurface()
		grid, ok := table.Project(text, c.sort.State(), table.WithLanguage(c.lang))
		if !ok {
			c.target.ShowEmpty()
			return
		}
		c.target.ShowPreview(grid)
		return
	}

	if c.surface == nil {
		c.surface = c.target.AttachEditor(text)
		c.logger.Debug("Edit surface attached")
		return
	}
	if c.surface.Text() != text {
		c.surface.SetText(text)
	}
}

// ToggleMode switches between edit and preview.
func (c *Controller) ToggleMode() Mode {
	if c.mode == PreviewMode {
		c.SetMode(EditMode)
	} else {
		c.SetMode(PreviewMode)
	}
	return c.mode
}

// SetMode switches to m and renders it. Leaving preview mode notifies the
// sort holder, which may clear the sort.
func (c *Controller) SetMode(m Mode) {
	if c.closed || m == c.mode {
		return
	}
	if c.mode == PreviewMode {
		c.sort.ModeExited()
	}
	c.logger.Debug("Mode changed", "from", c.mode, "to", m)
	c.mode = m
	c.Render()
}

// ActivateHeader applies a header activation on column and re-renders the
// preview. It is ignored outside preview mode.
func (c *Controller) ActivateHeader(column int) table.SortState {
	if c.closed || c.mode != PreviewMode || column < 0 {
		return c.sort.State()
	}
	s := c.sort.Activate(column)
	c.logger.Debug("Sort changed", "column", s.Column, "direction", s.Direction)
	c.Render()
	return s
}

// Edited is called by the host when the live-edit surface changed. Edits
// arriving after the surface was released are dropped.
func (c *Controller) Edited(text string) {
	if c.closed || c.surface == nil {
		return
	}
	if text == c.source.Text() {
		return
	}
	c.source.SetText(text)
	c.persist.RequestPersist()
}

// Close releases the surface and the buffer subscription. The controller
// renders nothing afterwards.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.releaseSurface()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.closed = true
}

func (c *Controller) mutated(string) {
	c.Render()
}

func (c *Controller) releaseSurface() {
	if c.surface == nil {
		return
	}
	c.surface.Close()
	c.surface = nil
	c.logger.Debug("Edit surface released")
}
