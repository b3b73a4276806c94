package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// pinnedEpsilon is how close to an edge a body must sit to count as pressed against it.
const pinnedEpsilon = 1e-9

// Bounds is the world rectangle. Y grows downwards, so MaxY is the floor.
// With OpenTop the top edge does not collide and bodies may enter from above.
type Bounds struct {
	MinX    float64 `json:"min_x"`
	MinY    float64 `json:"min_y"`
	MaxX    float64 `json:"max_x"`
	MaxY    float64 `json:"max_y"`
	OpenTop bool    `json:"open_top"`
}

// NewBounds returns a rectangle anchored at the origin.
func NewBounds(width, height float64) Bounds {
	return Bounds{MaxX: width, MaxY: height}
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func (b Bounds) Validate() error {
	if !finite(b.MinX, b.MinY, b.MaxX, b.MaxY) {
		return fmt.Errorf("%w: non-finite edge", ErrInvalidBounds)
	}
	if b.Width() <= 0 || b.Height() <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidBounds, b.Width(), b.Height())
	}
	return nil
}

func (b Bounds) fits(radius float64) bool {
	return 2*radius <= b.Width() && 2*radius <= b.Height()
}

// reflect clamps body inside the edges it penetrates and reflects the
// outward velocity component scaled by restitution. It reports whether any
// edge was hit.
func (b Bounds) reflect(body *Body, restitution float64) bool {
	hit := false
	p, v, r := &body.Position, &body.Velocity, body.Radius

	if p[0]-r < b.MinX {
		p[0] = b.MinX + r
		if v[0] < 0 {
			v[0] = -v[0] * restitution
		}
		hit = true
	} else if p[0]+r > b.MaxX {
		p[0] = b.MaxX - r
		if v[0] > 0 {
			v[0] = -v[0] * restitution
		}
		hit = true
	}

	if !b.OpenTop && p[1]-r < b.MinY {
		p[1] = b.MinY + r
		if v[1] < 0 {
			v[1] = -v[1] * restitution
		}
		hit = true
	} else if p[1]+r > b.MaxY {
		p[1] = b.MaxY - r
		if v[1] > 0 {
			v[1] = -v[1] * restitution
		}
		hit = true
	}
	return hit
}

// stopAtEdges removes velocity into any edge the body touches within slop.
func (b Bounds) stopAtEdges(body *Body, slop float64) {
	p, v, r := body.Position, &body.Velocity, body.Radius
	if p[0]-r <= b.MinX+slop && v[0] < 0 {
		v[0] = 0
	}
	if p[0]+r >= b.MaxX-slop && v[0] > 0 {
		v[0] = 0
	}
	if !b.OpenTop && p[1]-r <= b.MinY+slop && v[1] < 0 {
		v[1] = 0
	}
	if p[1]+r >= b.MaxY-slop && v[1] > 0 {
		v[1] = 0
	}
}

// clamp keeps the body centre at least one radius inside the closed edges.
func (b Bounds) clamp(body *Body) {
	r := body.Radius
	body.Position[0] = mgl64.Clamp(body.Position[0], b.MinX+r, b.MaxX-r)
	if b.OpenTop {
		body.Position[1] = min(body.Position[1], b.MaxY-r)
	} else {
		body.Position[1] = mgl64.Clamp(body.Position[1], b.MinY+r, b.MaxY-r)
	}
}

// pinned reports whether moving body along dir would push it into an edge it
// already rests on.
func (b Bounds) pinned(body *Body, dir mgl64.Vec2) bool {
	p, r := body.Position, body.Radius
	switch {
	case dir[0] < 0 && p[0]-r <= b.MinX+pinnedEpsilon:
		return true
	case dir[0] > 0 && p[0]+r >= b.MaxX-pinnedEpsilon:
		return true
	case dir[1] < 0 && !b.OpenTop && p[1]-r <= b.MinY+pinnedEpsilon:
		return true
	case dir[1] > 0 && p[1]+r >= b.MaxY-pinnedEpsilon:
		return true
	}
	return false
}
