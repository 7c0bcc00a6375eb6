package proximity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestValidateTopology(t *testing.T) {
	tests := []struct {
		name    string
		edges   [][2]int
		faces   [][3]int
		wantErr bool
	}{
		{"valid", [][2]int{{0, 1}, {1, 2}}, [][3]int{{0, 1, 2}}, false},
		{"empty", nil, nil, false},
		{"edge past the end", [][2]int{{0, 3}}, nil, true},
		{"negative edge id", [][2]int{{-1, 1}}, nil, true},
		{"edge repeats a vertex", [][2]int{{1, 1}}, nil, true},
		{"face past the end", nil, [][3]int{{0, 1, 3}}, true},
		{"face repeats a vertex", nil, [][3]int{{0, 2, 2}}, true},
		{"face repeats first and last", nil, [][3]int{{1, 0, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopology(3, tt.edges, tt.faces)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTopology)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEdgesFromFaces(t *testing.T) {
	// Two triangles sharing the edge 1-2
	faces := [][3]int{{0, 1, 2}, {2, 1, 3}}

	got := EdgesFromFaces(faces)
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {1, 2}, {1, 3}, {2, 3}}, got)
	assert.Empty(t, EdgesFromFaces(nil))
}

func TestVertices2D(t *testing.T) {
	got := Vertices2D([]mgl64.Vec2{{1, 2}, {-3, 4}})
	assert.Equal(t, []mgl64.Vec3{{1, 2, 0}, {-3, 4, 0}}, got)
}

func TestGroupPolicy(t *testing.T) {
	canCollide := GroupPolicy([]int{0, 0, 1})

	assert.False(t, canCollide(0, 1))
	assert.True(t, canCollide(0, 2))
	assert.True(t, canCollide(2, 1))
	// Ungrouped vertices always collide
	assert.True(t, canCollide(0, 5))
}
