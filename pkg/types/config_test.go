package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewConfigClamp(t *testing.T) {
	tests := []struct {
		name string
		in   ReviewConfig
		want ReviewConfig
	}{
		{"zero takes defaults", ReviewConfig{}, ReviewConfig{Goal: 30, Batch: 15, NewRatio: 0}},
		{"in range", ReviewConfig{Goal: 40, Batch: 20, NewRatio: 0.5}, ReviewConfig{Goal: 40, Batch: 20, NewRatio: 0.5}},
		{"below", ReviewConfig{Goal: 1, Batch: 2, NewRatio: -0.2}, ReviewConfig{Goal: 5, Batch: 5, NewRatio: 0}},
		{"above", ReviewConfig{Goal: 500, Batch: 99, NewRatio: 1.5}, ReviewConfig{Goal: 200, Batch: 50, NewRatio: 1}},
		{"nan ratio", ReviewConfig{Goal: 30, Batch: 15, NewRatio: math.NaN()}, ReviewConfig{Goal: 30, Batch: 15, NewRatio: 0.3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp())
		})
	}
}
