package main

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/diffformat"
	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/pipeline"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff BASE NEW OUTPUT",
		Short: "Create a diff file from BASE to NEW",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, newSnap, output := args[0], args[1], args[2]

			baseFetcher, err := fetch.Open(base)
			if err != nil {
				return err
			}
			defer baseFetcher.Close()
			newFetcher, err := fetch.Open(newSnap)
			if err != nil {
				return err
			}
			defer newFetcher.Close()

			meta := diffformat.NewMetadata(filepath.Base(newSnap), filepath.Base(base))
			log.Info().Int("chunks", newFetcher.Len()).Msg("creating diff")

			opts := pipeline.Options{
				Workers: runtime.NumCPU(),
				Progress: func(done, total int) {
					if done%5000 == 0 || done == total {
						log.Debug().Int("done", done).Int("total", total).Msg("diffing")
					}
				},
			}
			digest, err := pipeline.Run(context.Background(), baseFetcher, newFetcher, output, meta, opts)
			if err != nil {
				return err
			}
			log.Info().Str("output", output).Str("new_archive_checksum", hex.EncodeToString(digest[:])).Msg("diff file written")
			return nil
		},
	}
}
