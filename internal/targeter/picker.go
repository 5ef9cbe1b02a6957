package targeter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"inlineai.app/relay/internal/model"
)

var (
	ErrPickInProgress = errors.New("a pick is already in progress")
	ErrPickCancelled  = errors.New("pick cancelled")
)

// Page is the browser surface the picker drives.
type Page interface {
	// ArmClick installs a one-shot, capture-phase click interceptor that
	// swallows the event and removes itself after it fires once.
	ArmClick(ctx context.Context) (Listener, error)
	// Screenshot rasterises the node the locator resolves to as PNG.
	Screenshot(ctx context.Context, locator string) ([]byte, error)
	State(ctx context.Context) (PageState, error)
}

// Listener is the handle to one armed click interceptor.
type Listener interface {
	// Wait blocks until the click, Remove, or ctx ends the listener.
	// After Remove it returns ErrPickCancelled.
	Wait(ctx context.Context) (Click, error)
	// Remove detaches the interceptor. Safe to call more than once.
	Remove() error
}

// Click is what the page reports for the captured event: the serialised
// document with the clicked node tagged by PickedAttr, and its viewport box.
type Click struct {
	Document string
	Box      model.BoundingBox
}

type PageState struct {
	URL      string
	Viewport model.Viewport
}

type State int

const (
	Idle State = iota
	Picking
)

func (s State) String() string {
	if s == Picking {
		return "picking"
	}
	return "idle"
}

// Picker owns at most one armed listener. It is Picking from BeginPick until
// the click arrives, Cancel is called, or the caller's context ends.
type Picker struct {
	page Page

	mu        sync.Mutex
	state     State
	listener  Listener
	cancelled bool // Cancel arrived while the listener was still being armed
}

func NewPicker(page Page) *Picker {
	return &Picker{page: page}
}

func (p *Picker) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// BeginPick arms the page and waits for one click.
func (p *Picker) BeginPick(ctx context.Context) (model.PickedTarget, error) {
	p.mu.Lock()
	if p.state == Picking {
		p.mu.Unlock()
		return model.PickedTarget{}, ErrPickInProgress
	}
	p.state = Picking
	p.cancelled = false
	p.mu.Unlock()

	// Arming is a browser round trip; the lock is not held across it.
	l, err := p.page.ArmClick(ctx)
	if err != nil {
		p.mu.Lock()
		p.state = Idle
		p.mu.Unlock()
		return model.PickedTarget{}, fmt.Errorf("arming click listener: %w", err)
	}

	p.mu.Lock()
	p.listener = l
	cancelled := p.cancelled
	p.mu.Unlock()

	defer p.release(l)

	if cancelled {
		return model.PickedTarget{}, ErrPickCancelled
	}

	click, err := l.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return model.PickedTarget{}, fmt.Errorf("%w: %w", ErrPickCancelled, ctx.Err())
		}
		return model.PickedTarget{}, err
	}

	locator, err := LocateInSnapshot(click.Document)
	if err != nil {
		return model.PickedTarget{}, err
	}

	slog.DebugContext(ctx, "element picked", "locator", locator)
	return model.PickedTarget{Locator: locator, BoundingBox: click.Box}, nil
}

// Cancel ends an in-flight pick. It is a no-op when Idle.
func (p *Picker) Cancel() error {
	p.mu.Lock()
	if p.state == Picking && p.listener == nil {
		p.cancelled = true
	}
	l := p.listener
	p.mu.Unlock()

	if l == nil {
		return nil
	}
	return l.Remove()
}

func (p *Picker) release(l Listener) {
	if err := l.Remove(); err != nil {
		slog.Debug("removing click listener", "error", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == l {
		p.listener = nil
		p.state = Idle
	}
}

// CaptureSnapshot re-resolves the locator and rasterises the node. Failure is
// reported as a degraded outcome and never aborts the pick.
func (p *Picker) CaptureSnapshot(ctx context.Context, locator string) model.Outcome[[]byte] {
	png, err := p.page.Screenshot(ctx, locator)
	if err != nil {
		slog.WarnContext(ctx, "element snapshot failed, continuing without it", "locator", locator, "error", err)
		return model.Degrade[[]byte](err)
	}
	return model.Ok(png)
}

// PageState reads the page's current location and viewport.
func (p *Picker) PageState(ctx context.Context) (PageState, error) {
	return p.page.State(ctx)
}

// PNGDataURL encodes a PNG as the data URL carried in screenshotImage.
func PNGDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
