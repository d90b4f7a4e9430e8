package systems

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float32
		want           float32
	}{
		{"same point", 5, 5, 5, 5, 0},
		{"3-4-5", 0, 0, 3, 4, 5},
		{"symmetric", 3, 4, 0, 0, 5},
		{"negative", -1, -1, 2, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := distance(tt.x1, tt.y1, tt.x2, tt.y2)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("distance = %v, want %v", got, tt.want)
			}
			if sq := distanceSq(tt.x1, tt.y1, tt.x2, tt.y2); math.Abs(float64(sq-tt.want*tt.want)) > 1e-4 {
				t.Errorf("distanceSq = %v, want %v", sq, tt.want*tt.want)
			}
		})
	}
}
