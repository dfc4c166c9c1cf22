// Package template substitutes named placeholders into the configurable
// automated-message templates (greeting, transfer notice, completion).
package template

import (
	"strings"
	"time"
)

// Data holds the values available to a template.
type Data struct {
	ContactName   string
	Queue         string
	Agent         string
	PreviousQueue string
	PreviousAgent string
}

// Renderer substitutes {{placeholder}} tokens. The zero value is not
// usable; construct with NewRenderer.
type Renderer struct {
	now func() time.Time
}

// NewRenderer returns a renderer using the wall clock.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// NewRendererAt returns a renderer with a fixed clock.
func NewRendererAt(now func() time.Time) *Renderer {
	return &Renderer{now: now}
}

// Render substitutes all known placeholders in tpl. Unknown placeholders
// are left untouched so misconfigured templates stay visible.
func (r *Renderer) Render(tpl string, data Data) string {
	replacer := strings.NewReplacer(
		"{{ms}}", r.salutation(),
		"{{name}}", data.ContactName,
		"{{queue}}", data.Queue,
		"{{agent}}", data.Agent,
		"{{previousQueue}}", data.PreviousQueue,
		"{{previousAgent}}", data.PreviousAgent,
		"{{hora}}", r.now().Format("15:04"),
	)
	return replacer.Replace(tpl)
}

// salutation picks the time-of-day greeting used by the {{ms}} token.
func (r *Renderer) salutation() string {
	switch hour := r.now().Hour(); {
	case hour >= 6 && hour < 12:
		return "Bom dia"
	case hour >= 12 && hour < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}
