package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/convex/pkg/decompose"
	"github.com/taigrr/convex/pkg/hull"
	"github.com/taigrr/convex/pkg/math3d"
	"github.com/taigrr/convex/pkg/models"
)

func newDecomposeCmd() *cobra.Command {
	var (
		output string
		axes   []string
		opts   = decompose.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "decompose <model.glb>",
		Short: "Approximate a model by a set of convex hulls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.Axes, err = parseAxes(axes); err != nil {
				return err
			}

			mesh, err := models.LoadGLB(args[0])
			if err != nil {
				return err
			}
			hulls, err := runDecompose(cmd, mesh, opts)
			if err != nil {
				return err
			}

			if output == "" {
				return nil
			}
			if err := models.ExportHullsGLB(output, hulls); err != nil {
				return err
			}
			logger.Info("wrote", "path", output, "hulls", len(hulls))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "Write the hulls to this GLB file")
	f.IntVar(&opts.SplitsPerAxis, "splits", opts.SplitsPerAxis, "Candidate slabs per axis")
	f.IntVar(&opts.MaxRecursiveDepth, "depth", opts.MaxRecursiveDepth, "Maximum split depth")
	f.IntVar(&opts.MaxVerticesPerHull, "max-vertices", opts.MaxVerticesPerHull, "Vertex budget of every hull")
	f.IntVar(&opts.MinTriangles, "min-triangles", opts.MinTriangles, "Stop splitting groups this small")
	f.StringSliceVar(&axes, "axes", []string{"x", "y", "z"}, "Split directions (x, y, z or a combination like xy)")
	return cmd
}

// runDecompose decomposes mesh and logs a summary.
func runDecompose(cmd *cobra.Command, mesh *models.Mesh, opts decompose.Options) ([]*hull.ConvexHull, error) {
	opts.Logger = logger.WithPrefix("decompose")

	start := time.Now()
	hulls, err := decompose.Decompose(cmd.Context(), mesh.Triangles(), opts)
	if err != nil {
		return nil, fmt.Errorf("decompose %s: %w", mesh.Name, err)
	}

	var volume float64
	vertices := 0
	for _, h := range hulls {
		volume += h.Volume()
		vertices += len(h.Vertices)
	}
	logger.Info("decomposed",
		"triangles", mesh.TriangleCount(),
		"hulls", len(hulls),
		"vertices", vertices,
		"volume", volume,
		"elapsed", time.Since(start).Round(time.Microsecond),
	)
	return hulls, nil
}

// parseAxes turns names like "x" or "xz" into split directions.
func parseAxes(names []string) ([]math3d.Vec3, error) {
	axes := make([]math3d.Vec3, 0, len(names))
	for _, name := range names {
		var v math3d.Vec3
		for _, r := range strings.ToLower(strings.TrimSpace(name)) {
			switch r {
			case 'x':
				v.X = 1
			case 'y':
				v.Y = 1
			case 'z':
				v.Z = 1
			default:
				return nil, fmt.Errorf("invalid axis %q", name)
			}
		}
		if v.IsZero() {
			return nil, fmt.Errorf("invalid axis %q", name)
		}
		axes = append(axes, v)
	}
	return axes, nil
}
