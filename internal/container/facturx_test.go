package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchAttachment(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
		ok    bool
	}{
		{
			name:  "facturx",
			names: []string{"factur-x.xml"},
			want:  "factur-x.xml",
			ok:    true,
		},
		{
			name:  "zugferd legacy",
			names: []string{"logo.png", "zugferd-invoice.xml"},
			want:  "zugferd-invoice.xml",
			ok:    true,
		},
		{
			name:  "prefers facturx over zugferd",
			names: []string{"zugferd-invoice.xml", "factur-x.xml"},
			want:  "factur-x.xml",
			ok:    true,
		},
		{
			name:  "decorated listing entry",
			names: []string{"factur-x.xml (application/xml)"},
			want:  "factur-x.xml",
			ok:    true,
		},
		{
			name:  "case insensitive",
			names: []string{"Factur-X.XML"},
			want:  "factur-x.xml",
			ok:    true,
		},
		{
			name:  "no invoice attachment",
			names: []string{"terms.pdf", "logo.png"},
			ok:    false,
		},
		{
			name: "empty",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := matchAttachment(tt.names)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
