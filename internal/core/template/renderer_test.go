package template_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hiperdesk/backend/internal/core/template"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 3, 15, hour, 30, 0, 0, time.UTC)
	}
}

func TestRenderer_Placeholders(t *testing.T) {
	r := template.NewRendererAt(fixedClock(10))

	body := r.Render(
		"{{ms}} {{name}}, seu atendimento foi transferido. Departamento: {{queue}}. Atendente: {{agent}}.",
		template.Data{
			ContactName: "Maria",
			Queue:       "Financeiro",
			Agent:       "João",
		},
	)

	assert.Equal(t, "Bom dia Maria, seu atendimento foi transferido. Departamento: Financeiro. Atendente: João.", body)
}

func TestRenderer_PreviousValues(t *testing.T) {
	r := template.NewRendererAt(fixedClock(14))

	body := r.Render(
		"De {{previousQueue}}/{{previousAgent}} para {{queue}}/{{agent}}",
		template.Data{
			Queue:         "Suporte N2",
			Agent:         "Ana",
			PreviousQueue: "Suporte N1",
			PreviousAgent: "Bruno",
		},
	)

	assert.Equal(t, "De Suporte N1/Bruno para Suporte N2/Ana", body)
}

func TestRenderer_Salutation(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{7, "Bom dia"},
		{11, "Bom dia"},
		{12, "Boa tarde"},
		{17, "Boa tarde"},
		{18, "Boa noite"},
		{23, "Boa noite"},
		{3, "Boa noite"},
	}

	for _, tc := range cases {
		r := template.NewRendererAt(fixedClock(tc.hour))
		assert.Equal(t, tc.want, r.Render("{{ms}}", template.Data{}), "hour %d", tc.hour)
	}
}

func TestRenderer_HoraAndUnknownTokens(t *testing.T) {
	r := template.NewRendererAt(fixedClock(9))

	body := r.Render("{{hora}} {{protocolo}}", template.Data{})

	assert.Equal(t, "09:30 {{protocolo}}", body)
}
