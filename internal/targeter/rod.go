package targeter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"inlineai.app/relay/internal/model"
)

const removeTimeout = 2 * time.Second

var ErrLocatorNotFound = errors.New("locator matched no element")

// armClickJS installs the interceptor and parks its result promise on window
// so a later evaluation can await it. The clicked node is tagged only for the
// duration of the outerHTML serialisation.
const armClickJS = `(attr) => {
	const prev = window.__inlineAiPick;
	if (prev) prev.cancel();

	let settle;
	const promise = new Promise((resolve) => { settle = resolve; });

	function onClick(e) {
		e.preventDefault();
		e.stopPropagation();
		document.removeEventListener('click', onClick, true);

		const el = e.target;
		const rect = el.getBoundingClientRect();
		el.setAttribute(attr, '');
		const html = document.documentElement.outerHTML;
		el.removeAttribute(attr);

		settle({ html, rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height } });
	}

	document.addEventListener('click', onClick, true);
	window.__inlineAiPick = {
		promise,
		cancel: () => {
			document.removeEventListener('click', onClick, true);
			settle(null);
		},
	};
}`

const awaitClickJS = `() => window.__inlineAiPick ? window.__inlineAiPick.promise : null`

const removeClickJS = `() => {
	const p = window.__inlineAiPick;
	if (p) {
		p.cancel();
		delete window.__inlineAiPick;
	}
}`

const pageStateJS = `() => ({ url: location.href, width: window.innerWidth, height: window.innerHeight })`

type rodPage struct {
	page *rod.Page
}

// NewRodPage adapts a go-rod page to the picker.
func NewRodPage(page *rod.Page) Page {
	return &rodPage{page: page}
}

func (p *rodPage) ArmClick(ctx context.Context) (Listener, error) {
	_, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      armClickJS,
		JSArgs:  []interface{}{PickedAttr},
		ByValue: true,
	})
	if err != nil {
		return nil, fmt.Errorf("installing click interceptor: %w", err)
	}
	return &rodListener{page: p.page}, nil
}

func (p *rodPage) Screenshot(ctx context.Context, locator string) ([]byte, error) {
	els, err := p.page.Context(ctx).Elements(locator)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", locator, err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLocatorNotFound, locator)
	}

	png, err := els.First().Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("capturing element: %w", err)
	}
	return png, nil
}

func (p *rodPage) State(ctx context.Context) (PageState, error) {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{JS: pageStateJS, ByValue: true})
	if err != nil {
		return PageState{}, fmt.Errorf("reading page state: %w", err)
	}

	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return PageState{}, fmt.Errorf("marshal page state: %w", err)
	}

	var st struct {
		URL    string  `json:"url"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return PageState{}, fmt.Errorf("decoding page state: %w", err)
	}

	return PageState{
		URL:      st.URL,
		Viewport: model.Viewport{Width: st.Width, Height: st.Height},
	}, nil
}

type rodListener struct {
	page *rod.Page

	once      sync.Once
	removeErr error
}

func (l *rodListener) Wait(ctx context.Context) (Click, error) {
	res, err := l.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           awaitClickJS,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return Click{}, fmt.Errorf("waiting for click: %w", err)
	}
	if res == nil || res.Value.Nil() {
		return Click{}, ErrPickCancelled
	}

	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return Click{}, fmt.Errorf("marshal click: %w", err)
	}

	var payload struct {
		HTML string            `json:"html"`
		Rect model.BoundingBox `json:"rect"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Click{}, fmt.Errorf("decoding click: %w", err)
	}

	return Click{Document: payload.HTML, Box: payload.Rect}, nil
}

func (l *rodListener) Remove() error {
	l.once.Do(func() {
		_, err := l.page.Timeout(removeTimeout).Evaluate(&rod.EvalOptions{JS: removeClickJS, ByValue: true})
		if err != nil {
			l.removeErr = fmt.Errorf("removing click interceptor: %w", err)
		}
	})
	return l.removeErr
}
