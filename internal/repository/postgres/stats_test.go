package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name      string
		delivered int
		sent      int
		want      int
	}{
		{"nothing sent", 0, 0, 0},
		{"all delivered", 10, 10, 100},
		{"none delivered", 0, 10, 0},
		{"rounds down", 1, 3, 33},
		{"rounds up", 2, 3, 67},
		{"half", 1, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuccessRate(tt.delivered, tt.sent))
		})
	}
}
