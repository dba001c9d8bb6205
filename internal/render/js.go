package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/roach88/changeprob/internal/assets"
	"github.com/roach88/changeprob/internal/ir"
	"github.com/roach88/changeprob/internal/table"
)

var (
	jsOnce sync.Once
	jsTpl  *raymond.Template
	jsErr  error
)

func scenesTemplate() (*raymond.Template, error) {
	jsOnce.Do(func() {
		src, err := assets.Read(assets.ScenesJSTemplate)
		if err != nil {
			jsErr = err
			return
		}
		jsTpl, jsErr = raymond.Parse(string(src))
	})
	return jsTpl, jsErr
}

// JS renders the table as the JS constants file the browser harness imports:
// change_prompts, change_choices, all_scenes, object_colors and all_objects.
// Every string is emitted as a JSON literal, which is also a JS literal.
func JS(t *table.Table) (string, error) {
	tpl, err := scenesTemplate()
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", assets.ScenesJSTemplate, err)
	}
	out, err := tpl.Exec(jsContext(t))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", assets.ScenesJSTemplate, err)
	}
	return out, nil
}

// WriteJS renders the table with JS and writes it to w.
func WriteJS(w io.Writer, t *table.Table) error {
	out, err := JS(t)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// jsContext builds the template data. Values are pre-quoted so the template
// only uses triple-stash and never HTML-escapes.
func jsContext(t *table.Table) map[string]interface{} {
	scenes := make([]map[string]interface{}, t.SceneCount())
	for i := range scenes {
		// Indexes come from SceneCount, so these cannot fail.
		image, _ := t.Scene(i)
		labels, _ := t.ObjectSet(i)
		scenes[i] = map[string]interface{}{
			"image":  ir.QuoteString(image),
			"labels": quoteAll(labels),
		}
	}

	return map[string]interface{}{
		"name":    t.Name(),
		"version": ir.ToolVersion,
		"hash":    t.Hash(),
		"prompts": quoteAll(t.Prompts()),
		"choices": quoteAll(t.Choices()),
		"colors":  quoteAll(t.ColorSlots()),
		"scenes":  scenes,
	}
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = ir.QuoteString(s)
	}
	return out
}
