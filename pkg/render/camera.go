package render

import (
	"math"

	"github.com/taigrr/convex/pkg/math3d"
)

// Camera orbits a target point at a fixed distance.
type Camera struct {
	// Target is the point the camera looks at.
	Target math3d.Vec3
	// Distance from the target along the viewing axis.
	Distance float64

	// Orbit angles in radians.
	Yaw   float64 // around the world Y axis
	Pitch float64 // around the camera X axis

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// NewCamera creates a camera five units in front of the origin.
func NewCamera() *Camera {
	return &Camera{
		Distance:    5,
		FOV:         math.Pi / 3, // 60 degrees
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
		vpDirty:     true,
	}
}

// Frame points the camera at b and backs off until all of b fits in view.
func (c *Camera) Frame(b math3d.AABB) {
	radius := b.Diagonal() * 0.5
	if radius == 0 {
		radius = 1
	}
	c.Target = b.Center()
	c.Distance = radius / math.Sin(c.FOV/2) * 1.1
	c.Near = c.Distance * 0.01
	c.Far = c.Distance + radius*4
	c.viewDirty = true
	c.projDirty = true
	c.vpDirty = true
}

// Orbit rotates the camera around its target by the given angles.
func (c *Camera) Orbit(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch

	// Clamp pitch so the camera never flips over the pole.
	const maxPitch = math.Pi/2 - 0.01
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch))

	c.viewDirty = true
	c.vpDirty = true
}

// Zoom scales the distance to the target. Factors below 1 move closer.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance *= factor
	c.viewDirty = true
	c.vpDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
	c.vpDirty = true
}

// Position returns the camera position in world space.
func (c *Camera) Position() math3d.Vec3 {
	offset := math3d.V3(
		math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
	return c.Target.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.Translate(math3d.V3(0, 0, -c.Distance)).
			Mul(math3d.RotateX(c.Pitch)).
			Mul(math3d.RotateY(-c.Yaw)).
			Mul(math3d.Translate(c.Target.Negate()))
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.vpDirty || c.viewDirty || c.projDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Behind the camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = ndc.Z

	return x, y, depth, true
}
