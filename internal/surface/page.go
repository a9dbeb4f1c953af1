package surface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"formnerd/internal/form"
)

// PageSurface implements form.Surface over one rod page. Discovery tags each
// fillable element with a data attribute so later application can address it
// without keeping element handles across navigations.
type PageSurface struct {
	page *rod.Page
}

// NewPageSurface wraps an already-navigated page.
func NewPageSurface(page *rod.Page) *PageSurface {
	return &PageSurface{page: page}
}

// refAttr is the attribute discovery stamps on each fillable element.
const refAttr = "data-formnerd-ref"

// discoverJS walks the document for fillable elements, groups radio inputs by
// name, collects prompt candidate sources, and stamps each element (or radio
// group representative) with a stable ref attribute.
const discoverJS = `
() => {
	const REF = 'data-formnerd-ref';
	const results = [];
	let counter = 0;

	const labelFor = (el) => {
		if (el.labels && el.labels.length > 0) {
			return el.labels[0].innerText || '';
		}
		if (el.id) {
			const lab = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (lab) return lab.innerText || '';
		}
		const parentLabel = el.closest('label');
		return parentLabel ? (parentLabel.innerText || '') : '';
	};

	const contextText = (el) => {
		let node = el.parentElement;
		for (let depth = 0; node && depth < 3; depth++, node = node.parentElement) {
			const text = (node.innerText || '').trim();
			if (text) return text.slice(0, 256);
		}
		return '';
	};

	const visible = (el) => {
		const style = window.getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		return style.display !== 'none' && style.visibility !== 'hidden' &&
			rect.width > 0 && rect.height > 0;
	};

	const push = (el, kind, inputType, options) => {
		const ref = 'f' + (counter++);
		el.setAttribute(REF, ref);
		results.push({
			ref,
			id: el.id || el.name || ref,
			kind,
			inputType: inputType || '',
			label: labelFor(el),
			aria: el.getAttribute('aria-label') || el.getAttribute('aria-description') || '',
			placeholder: el.getAttribute('placeholder') || '',
			context: contextText(el),
			options: options || []
		});
	};

	const seenRadioGroups = new Set();
	const els = document.querySelectorAll('input, textarea, select');
	for (const el of els) {
		if (el.disabled || el.readOnly || !visible(el)) continue;
		const tag = el.tagName.toLowerCase();

		if (tag === 'textarea') {
			push(el, 'textarea', '', []);
			continue;
		}
		if (tag === 'select') {
			const options = Array.from(el.options).map(o => (o.label || o.text || '').trim()).filter(Boolean);
			push(el, 'select', '', options);
			continue;
		}

		const type = (el.getAttribute('type') || 'text').toLowerCase();
		if (['hidden', 'submit', 'button', 'reset', 'image', 'file'].includes(type)) continue;

		if (type === 'radio') {
			const name = el.name || '';
			if (!name || seenRadioGroups.has(name)) continue;
			seenRadioGroups.add(name);
			const group = Array.from(document.querySelectorAll(
				'input[type="radio"][name="' + CSS.escape(name) + '"]'));
			const options = group.map(r => {
				const lab = labelFor(r).trim();
				return lab || r.value;
			}).filter(Boolean);
			push(el, 'radio-group', '', options);
			continue;
		}
		if (type === 'checkbox') {
			push(el, 'checkbox', '', ['Yes', 'No']);
			continue;
		}

		push(el, 'text', type === 'text' ? '' : type, []);
	}
	return results;
}
`

type discoveredField struct {
	Ref         string   `json:"ref"`
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	InputType   string   `json:"inputType"`
	Label       string   `json:"label"`
	Aria        string   `json:"aria"`
	Placeholder string   `json:"placeholder"`
	Context     string   `json:"context"`
	Options     []string `json:"options"`
}

// DiscoverFields returns the ordered fillable fields of the page.
func (s *PageSurface) DiscoverFields(ctx context.Context) ([]form.Field, error) {
	res, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           discoverJS,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("discover fields: %w", err)
	}

	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal discovered fields: %w", err)
	}
	var discovered []discoveredField
	if err := json.Unmarshal(raw, &discovered); err != nil {
		return nil, fmt.Errorf("decode discovered fields: %w", err)
	}

	fields := make([]form.Field, 0, len(discovered))
	for _, d := range discovered {
		fields = append(fields, form.Field{
			ID:              d.ID,
			Kind:            form.FieldKind(d.Kind),
			InputType:       d.InputType,
			Options:         d.Options,
			Label:           d.Label,
			AriaDescription: d.Aria,
			Placeholder:     d.Placeholder,
			ContextText:     d.Context,
			Ref:             d.Ref,
		})
	}
	return fields, nil
}

// applyJS writes a value into the element addressed by ref, honoring the
// field kind, and dispatches input/change events through the native value
// setter so framework-bound (React et al.) state picks the change up.
const applyJS = `
(ref, kind, value) => {
	const REF = 'data-formnerd-ref';
	const el = document.querySelector('[' + REF + '="' + ref + '"]');
	if (!el) return 'element not found';

	const fire = (target) => {
		for (const type of ['input', 'change']) {
			target.dispatchEvent(new Event(type, { bubbles: true }));
		}
	};

	const setNative = (target, v) => {
		const proto = Object.getPrototypeOf(target);
		const desc = Object.getOwnPropertyDescriptor(proto, 'value');
		if (desc && desc.set) {
			desc.set.call(target, v);
		} else {
			target.value = v;
		}
	};

	if (kind === 'select') {
		for (const opt of el.options) {
			const text = (opt.label || opt.text || '').trim();
			if (text === value || opt.value === value) {
				el.value = opt.value;
				fire(el);
				return '';
			}
		}
		return 'option not found';
	}

	if (kind === 'radio-group') {
		const name = el.name || '';
		const group = name
			? Array.from(document.querySelectorAll('input[type="radio"][name="' + CSS.escape(name) + '"]'))
			: [el];
		for (const r of group) {
			const lab = (r.labels && r.labels.length > 0 ? r.labels[0].innerText : '') || r.value;
			if (lab.trim() === value || r.value === value) {
				r.checked = true;
				fire(r);
				return '';
			}
		}
		return 'radio option not found';
	}

	if (kind === 'checkbox') {
		el.checked = value.toLowerCase() !== 'no' && value !== '';
		fire(el);
		return '';
	}

	setNative(el, value);
	fire(el);
	return '';
}
`

// ApplyValue writes a value into a field and emits change notifications.
func (s *PageSurface) ApplyValue(ctx context.Context, field form.Field, value string) error {
	ref, ok := field.Ref.(string)
	if !ok || ref == "" {
		return fmt.Errorf("field %q has no surface ref", field.ID)
	}

	res, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           applyJS,
		JSArgs:       []interface{}{ref, string(field.Kind), value},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return fmt.Errorf("apply value to %q: %w", field.ID, err)
	}
	if msg := res.Value.Str(); msg != "" {
		return fmt.Errorf("apply value to %q: %s", field.ID, msg)
	}
	return nil
}

// FindControls returns the page's action controls in document order. Invoke
// closures click through rod so the host gets a trusted-looking event.
func (s *PageSurface) FindControls(ctx context.Context) ([]form.Control, error) {
	elements, err := s.page.Context(ctx).Elements(
		`button, input[type="submit"], input[type="button"], [role="button"]`)
	if err != nil {
		return nil, fmt.Errorf("find controls: %w", err)
	}

	controls := make([]form.Control, 0, len(elements))
	for _, el := range elements {
		el := el

		text, err := el.Text()
		if err != nil || text == "" {
			if v, verr := el.Attribute("value"); verr == nil && v != nil {
				text = *v
			}
		}

		visible, _ := el.Visible()
		enabled := true
		if d, derr := el.Attribute("disabled"); derr == nil && d != nil {
			enabled = false
		}

		controls = append(controls, form.Control{
			Text:    text,
			Visible: visible,
			Enabled: enabled,
			Invoke: func(ctx context.Context) error {
				return el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
			},
		})
	}
	return controls, nil
}
