package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/chunkspec"
	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/restore"
	"github.com/bczhc/wplace-archiver/internal/snapshot"
)

// timelapse is retrieve with --all implied and stitching always on,
// reintroduced from original_source/src/bin/timelapse.rs.
func newTimelapseCmd() *cobra.Command {
	var chunkSpecArg, diffDirsArg, baseArg, outArg, atArg string
	var noChecksum bool

	cmd := &cobra.Command{
		Use:   "timelapse",
		Short: "Write one PNG per snapshot step for a chunk range",
		RunE: func(cmd *cobra.Command, args []string) error {
			chunks, err := chunkspec.Parse(chunkSpecArg)
			if err != nil {
				return err
			}
			files, err := snapshot.List([]string{diffDirsArg})
			if err != nil {
				return err
			}
			ordered, err := snapshot.Range(files, "", atArg)
			if err != nil {
				return err
			}

			baseFetcher, err := fetch.Open(baseArg)
			if err != nil {
				return err
			}
			defer baseFetcher.Close()

			log.Info().Int("steps", len(ordered)).Msg("building timelapse")
			return restore.Restore(baseFetcher, ordered, chunks, outArg, restore.Options{
				Timelapse:  true,
				Stitch:     true,
				NoChecksum: noChecksum,
			})
		},
	}

	cmd.Flags().StringVarP(&chunkSpecArg, "chunk", "c", "", "CHUNK_SPEC: X-Y[,X-Y|X1-Y1..X2-Y2]...")
	cmd.Flags().StringVarP(&diffDirsArg, "diff-dir", "d", "", "directory of .diff files")
	cmd.Flags().StringVarP(&baseArg, "base-snapshot", "b", "", "path to the initial snapshot")
	cmd.Flags().StringVarP(&outArg, "out", "o", "", "output directory")
	cmd.Flags().StringVarP(&atArg, "at", "t", "", "name of the final snapshot")
	cmd.Flags().BoolVar(&noChecksum, "no-checksum", false, "skip per-chunk checksum validation")
	return cmd
}
