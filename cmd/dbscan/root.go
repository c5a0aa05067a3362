package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbscan",
		Short: "Density-based clustering of vector points",
		Long: `dbscan groups points that lie in dense regions into clusters and reports
the points in sparse regions as noise.

Examples:
  dbscan cluster points.csv --radius 0.5 --min-pts 4
  dbscan cluster --index kdtree --format table < points.json
  DBSCAN_RADIUS=2 dbscan cluster points.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newClusterCmd())
	root.AddCommand(newVersionCmd())
	return root
}
