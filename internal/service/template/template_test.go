package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{
			name: "single token",
			tmpl: "Olá {name}!",
			vars: map[string]string{"name": "Maria"},
			want: "Olá Maria!",
		},
		{
			name: "repeated token replaced globally",
			tmpl: "{name}, confirme: {name}",
			vars: map[string]string{"name": "João"},
			want: "João, confirme: João",
		},
		{
			name: "unknown token stays verbatim",
			tmpl: "Olá {name}, evento {event_date}",
			vars: map[string]string{"name": "Ana"},
			want: "Olá Ana, evento {event_date}",
		},
		{
			name: "no tokens",
			tmpl: "sem variáveis",
			vars: map[string]string{"name": "x"},
			want: "sem variáveis",
		},
		{
			name: "empty value erases token",
			tmpl: "Olá {name}!",
			vars: map[string]string{"name": ""},
			want: "Olá !",
		},
		{
			name: "multiple tokens",
			tmpl: "{name}: {guest_summary}",
			vars: map[string]string{"name": "Ana", "guest_summary": "Você convidou: Somente você."},
			want: "Ana: Você convidou: Somente você.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, tt.vars))
		})
	}
}
