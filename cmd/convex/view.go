package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/convex/pkg/decompose"
	"github.com/taigrr/convex/pkg/hull"
	"github.com/taigrr/convex/pkg/math3d"
	"github.com/taigrr/convex/pkg/models"
	"github.com/taigrr/convex/pkg/render"
)

// idleSpin is the yaw speed, in radians per frame, the view settles back to.
const idleSpin = 0.01

// spinAxis is one orbit angle whose velocity springs back to a resting speed
// after each impulse.
type spinAxis struct {
	Angle    float64
	Velocity float64
	rest     float64
	spring   harmonica.Spring
	accel    float64
}

func newSpinAxis(fps int, rest float64) spinAxis {
	return spinAxis{
		Velocity: rest,
		rest:     rest,
		// Critically damped so impulses fade without overshoot.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

func (a *spinAxis) update() {
	a.Angle += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, a.rest)
}

// scene is what the viewer draws each frame.
type scene struct {
	mesh      *models.Mesh
	hulls     []*hull.ConvexHull
	showMesh  bool
	showHulls bool
}

func (s *scene) draw(w *render.Wireframe) {
	w.ResetStats()
	if s.showMesh {
		w.DrawMesh(s.mesh, math3d.Identity(), render.RGB(90, 90, 100))
	}
	if s.showHulls {
		for i, h := range s.hulls {
			w.DrawHull(h, math3d.Identity(), render.HullColor(i))
		}
	}
}

func newViewCmd() *cobra.Command {
	var (
		decomp   bool
		fps      int
		snapshot string
		width    int
		height   int
		opts     = decompose.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "view <model.glb>",
		Short: "Spin a wireframe of a model and its hulls in the terminal",
		Long: `Spin a wireframe of a model and its hulls in the terminal.

Controls:
  A/D, left/right  Spin
  W/S, up/down     Tilt
  +/-              Zoom
  M                Toggle mesh
  H                Toggle hulls
  R                Reset view
  Esc, Q           Quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := models.LoadGLB(args[0])
			if err != nil {
				return err
			}

			s := &scene{mesh: mesh, showMesh: true, showHulls: true}
			if decomp {
				s.hulls, err = runDecompose(cmd, mesh, opts)
			} else {
				var h *hull.ConvexHull
				h, err = hull.Compute(mesh.Points(), hull.DefaultOptions())
				s.hulls = []*hull.ConvexHull{h}
			}
			if err != nil {
				return err
			}

			if snapshot != "" {
				return saveSnapshot(s, snapshot, width, height)
			}
			return runViewer(cmd.Context(), s, fps)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&decomp, "decompose", false, "Show a convex decomposition instead of a single hull")
	f.IntVar(&opts.MaxRecursiveDepth, "depth", opts.MaxRecursiveDepth, "Maximum split depth with --decompose")
	f.IntVar(&fps, "fps", 30, "Target frames per second")
	f.StringVar(&snapshot, "snapshot", "", "Render a single frame to this PNG file and exit")
	f.IntVar(&width, "width", 320, "Snapshot width in pixels")
	f.IntVar(&height, "height", 240, "Snapshot height in pixels")
	return cmd
}

func framedCamera(s *scene, aspect float64) *render.Camera {
	camera := render.NewCamera()
	camera.SetAspectRatio(aspect)
	camera.Frame(s.mesh.Bounds)
	camera.Orbit(math.Pi/6, math.Pi/8)
	return camera
}

func saveSnapshot(s *scene, path string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid snapshot size %dx%d", width, height)
	}
	fb := render.NewFramebuffer(width, height)
	fb.Clear(render.RGB(30, 30, 40))

	w := render.NewWireframe(framedCamera(s, float64(width)/float64(height)), fb)
	s.draw(w)
	if err := fb.SavePNG(path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info("wrote", "path", path, "culled", w.Culled)
	return nil
}

func runViewer(ctx context.Context, s *scene, fps int) error {
	if fps <= 0 {
		fps = 30
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			logger.Debug("shutdown terminal", "err", err)
		}
	}()

	// Half-block cells hold two pixels stacked vertically.
	fb := render.NewFramebuffer(width, height*2)
	camera := framedCamera(s, float64(fb.Width)/float64(fb.Height))
	baseDistance := camera.Distance
	wire := render.NewWireframe(camera, fb)

	var yaw, pitch spinAxis
	reset := func() {
		yaw = newSpinAxis(fps, idleSpin)
		yaw.Angle = math.Pi / 6
		pitch = newSpinAxis(fps, 0)
		pitch.Angle = math.Pi / 8
		camera.Zoom(baseDistance / camera.Distance)
	}
	reset()

	const impulse = 0.05
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb.Resize(width, height*2)
				camera.SetAspectRatio(float64(fb.Width) / float64(max(fb.Height, 1)))

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("esc", "q", "ctrl+c"):
					return nil
				case ev.MatchString("a", "left"):
					yaw.Velocity -= impulse
				case ev.MatchString("d", "right"):
					yaw.Velocity += impulse
				case ev.MatchString("w", "up"):
					pitch.Velocity += impulse
				case ev.MatchString("s", "down"):
					pitch.Velocity -= impulse
				case ev.MatchString("+", "="):
					camera.Zoom(0.9)
				case ev.MatchString("-", "_"):
					camera.Zoom(1 / 0.9)
				case ev.MatchString("m"):
					s.showMesh = !s.showMesh
				case ev.MatchString("h"):
					s.showHulls = !s.showHulls
				case ev.MatchString("r"):
					reset()
				}
			}

		case <-ticker.C:
			yaw.update()
			pitch.update()
			camera.Orbit(yaw.Angle-camera.Yaw, pitch.Angle-camera.Pitch)
			// Orbit clamps pitch; keep the spring in sync with the camera.
			pitch.Angle = camera.Pitch

			fb.Clear(render.RGB(30, 30, 40))
			s.draw(wire)
			fb.Draw(term, uv.Rect(0, 0, width, height))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
