package main

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/chunkspec"
	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/restore"
	"github.com/bczhc/wplace-archiver/internal/snapshot"
)

func newRetrieveCmd() *cobra.Command {
	var chunkSpecArg, diffDirsArg, baseArg, outArg, atArg string
	var all, stitch, onlyStitched, noChecksum bool

	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Multi-diff restore: reconstruct chunks at a named snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			chunks, err := chunkspec.Parse(chunkSpecArg)
			if err != nil {
				return err
			}

			files, err := snapshot.List([]string{diffDirsArg})
			if err != nil {
				return err
			}

			// --all only controls whether restore.Restore emits a PNG at
			// every step instead of just the last one (Options.Timelapse);
			// it never changes which diffs are applied, matching
			// retrieve.rs's args.all (which gates only the per-step write).
			baseName := filepath.Base(baseArg)
			ordered, err := snapshot.Range(files, baseName, atArg)
			if err != nil {
				return err
			}

			baseFetcher, err := fetch.Open(baseArg)
			if err != nil {
				return err
			}
			defer baseFetcher.Close()

			log.Info().Int("diffs", len(ordered)).Int("chunks", len(chunks)).Msg("restoring")
			return restore.Restore(baseFetcher, ordered, chunks, outArg, restore.Options{
				Timelapse:    all,
				Stitch:       stitch || onlyStitched,
				OnlyStitched: onlyStitched,
				NoChecksum:   noChecksum,
			})
		},
	}

	cmd.Flags().StringVarP(&chunkSpecArg, "chunk", "c", "", "CHUNK_SPEC: X-Y[,X-Y|X1-Y1..X2-Y2]...")
	cmd.Flags().StringVarP(&diffDirsArg, "diff-dir", "d", "", "directory of .diff files")
	cmd.Flags().StringVarP(&baseArg, "base-snapshot", "b", "", "path to the initial snapshot")
	cmd.Flags().StringVarP(&outArg, "out", "o", "", "output directory")
	cmd.Flags().StringVarP(&atArg, "at", "t", "", "name of the goal snapshot")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "also retrieve all chunks prior to the goal (timelapse)")
	cmd.Flags().BoolVar(&stitch, "stitch", false, "also save a stitched canvas PNG per emitted step")
	cmd.Flags().BoolVar(&onlyStitched, "only-stitched", false, "save only the stitched canvas, not per-chunk PNGs")
	cmd.Flags().BoolVar(&noChecksum, "no-checksum", false, "skip per-chunk checksum validation")

	return cmd
}
