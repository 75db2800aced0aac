package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/convex/pkg/hull"
	"github.com/taigrr/convex/pkg/models"
)

func newHullCmd() *cobra.Command {
	var (
		output string
		naive  bool
		opts   = hull.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "hull <model.glb>",
		Short: "Build the convex hull of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := models.LoadGLB(args[0])
			if err != nil {
				return err
			}
			logger.Debug("loaded model", "path", args[0], "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())

			compute := hull.Compute
			if naive {
				compute = hull.ComputeNaive
			}

			start := time.Now()
			h, err := compute(mesh.Points(), opts)
			if err != nil {
				return fmt.Errorf("hull %s: %w", filepath.Base(args[0]), err)
			}
			logger.Info("hull",
				"vertices", len(h.Vertices),
				"triangles", h.TriangleCount(),
				"volume", h.Volume(),
				"fallback", h.Fallback,
				"elapsed", time.Since(start).Round(time.Microsecond),
			)

			if output == "" {
				return nil
			}
			if err := models.ExportHullsGLB(output, []*hull.ConvexHull{h}); err != nil {
				return err
			}
			logger.Info("wrote", "path", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "Write the hull to this GLB file")
	f.IntVar(&opts.MaxNumVertices, "max-vertices", opts.MaxNumVertices, "Vertex budget of the hull")
	f.Float64Var(&opts.NormalEpsilon, "epsilon", opts.NormalEpsilon, "Welding tolerance relative to the model size")
	f.BoolVar(&naive, "naive", false, "Skip the direction grid prefilter")
	return cmd
}
