package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"vacío usa el límite por defecto", PageRequest{}, PageRequest{Limit: DefaultPageLimit}},
		{"límite sobre el máximo", PageRequest{Limit: 500, Offset: 10}, PageRequest{Limit: MaxPageLimit, Offset: 10}},
		{"offset negativo", PageRequest{Limit: 5, Offset: -3}, PageRequest{Limit: 5}},
		{"valores válidos se conservan", PageRequest{Limit: 50, Offset: 40}, PageRequest{Limit: 50, Offset: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize()
			assert.Equal(t, tt.want, p)
		})
	}
}
