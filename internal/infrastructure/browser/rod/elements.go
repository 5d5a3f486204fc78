package rod

import (
	"context"
	"fmt"

	"bug-reproducer/internal/domain/dom"
	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/infrastructure/browser/htmlsource"
)

// collectJS gathers the raw facts dom.Extract needs for every node matching
// the selector passed as the first argument. Visibility is decided by the
// rendered box, which the static HTML fallback cannot know.
const collectJS = `(selector) => {
	const pathOf = (el) => {
		const segs = [];
		for (let cur = el; cur && cur.nodeType === 1; cur = cur.parentElement) {
			let index = 1;
			for (let sib = cur.previousElementSibling; sib; sib = sib.previousElementSibling) {
				if (sib.tagName === cur.tagName) index++;
			}
			segs.unshift({ tag: cur.tagName.toLowerCase(), index });
		}
		return segs;
	};
	const hidden = (el) => {
		const style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') return true;
		if (parseFloat(style.opacity) === 0) return true;
		const rect = el.getBoundingClientRect();
		return rect.width === 0 && rect.height === 0;
	};
	return Array.from(document.querySelectorAll(selector)).map((el) => ({
		tag: el.tagName.toLowerCase(),
		id: el.id || '',
		classes: Array.from(el.classList),
		text: (el.innerText || el.value || '').trim(),
		ariaLabel: el.getAttribute('aria-label') || '',
		placeholder: el.getAttribute('placeholder') || '',
		role: el.getAttribute('role') || '',
		type: el.getAttribute('type') || '',
		tabIndex: el.getAttribute('tabindex') || '',
		hasClickHandler: el.hasAttribute('onclick') || typeof el.onclick === 'function',
		contentEditable: el.isContentEditable,
		hidden: hidden(el),
		path: pathOf(el),
	}));
}`

// DOM lists the interactive elements of the current page. If the page
// refuses script evaluation the static HTML is classified instead.
func (b *BrowserAdapter) DOM(ctx context.Context) ([]entity.PageElement, error) {
	page, err := b.current()
	if err != nil {
		return nil, err
	}
	p := page.Context(ctx).Timeout(b.cfg.Timeout)

	res, err := p.Eval(collectJS, dom.InteractiveSelector)
	if err == nil {
		var nodes []entity.RawNode
		if err = res.Value.Unmarshal(&nodes); err == nil {
			return dom.Extract(nodes), nil
		}
	}
	b.logger.Warn("DOM collector failed, falling back to static HTML", "error", err)

	raw, herr := p.HTML()
	if herr != nil {
		return nil, fmt.Errorf("failed to read DOM: %w", herr)
	}
	elements, herr := htmlsource.Elements(raw)
	if herr != nil {
		return nil, fmt.Errorf("failed to parse DOM: %w", herr)
	}
	return elements, nil
}
