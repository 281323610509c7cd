package browser

import (
	"encoding/json"
	"fmt"
)

func jsString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}

func existsScript(selector string) string {
	return fmt.Sprintf(`!!document.querySelector(%s)`, jsString(selector))
}

func countScript(selector string) string {
	return fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(selector))
}

func clickScript(selector string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  el.click();
  return true;
})()`, jsString(selector))
}

func clickByTextScript(keywords []string) string {
	list, _ := json.Marshal(keywords)
	return fmt.Sprintf(`(() => {
  const keywords = %s;
  for (const b of Array.from(document.querySelectorAll('button'))) {
    const label = (b.innerText || b.textContent || '').toLowerCase();
    const hit = keywords.find((k) => label.includes(k));
    if (hit) {
      b.click();
      return hit;
    }
  }
  return '';
})()`, list)
}

func scrollScript(selector string, dy int) string {
	return fmt.Sprintf(`(() => {
  const sel = %s;
  const target = sel ? document.querySelector(sel) : window;
  if (!target) return false;
  target.scrollBy({ top: %d, behavior: 'smooth' });
  return true;
})()`, jsString(selector), dy)
}

const bodyTextLengthScript = `document.body ? (document.body.innerText || '').trim().length : 0`

// snapshotScript serializes the document with every open shadow root emitted
// as a <template shadowrootmode="open"> child of its host. Page templates are
// inert and left out.
const snapshotScript = `(() => {
  const voids = new Set(['area','base','br','col','embed','hr','img','input','link','meta','source','track','wbr']);
  const skip = new Set(['script','style','noscript','template']);
  const escText = (s) => s.replace(/&/g, '&amp;').replace(/</g, '&lt;').replace(/>/g, '&gt;');
  const escAttr = (s) => s.replace(/&/g, '&amp;').replace(/"/g, '&quot;');
  const out = [];
  const walk = (node) => {
    if (node.nodeType === Node.TEXT_NODE) { out.push(escText(node.data)); return; }
    if (node.nodeType !== Node.ELEMENT_NODE) return;
    const tag = node.localName;
    if (skip.has(tag)) return;
    out.push('<' + tag);
    for (const a of Array.from(node.attributes)) out.push(' ' + a.name + '="' + escAttr(a.value) + '"');
    out.push('>');
    if (voids.has(tag)) return;
    if (node.shadowRoot) {
      out.push('<template shadowrootmode="open">');
      node.shadowRoot.childNodes.forEach(walk);
      out.push('</template>');
    }
    node.childNodes.forEach(walk);
    out.push('</' + tag + '>');
  };
  walk(document.documentElement);
  return out.join('');
})()`
