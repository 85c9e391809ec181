package main

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare BASE NEW",
		Short: "Verify two snapshots are chunk-wise identical",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseFetcher, err := fetch.Open(args[0])
			if err != nil {
				return err
			}
			defer baseFetcher.Close()
			newFetcher, err := fetch.Open(args[1])
			if err != nil {
				return err
			}
			defer newFetcher.Close()

			// compare reports every mismatch rather than stopping at the
			// first — useful as a diagnostic when a diff/apply round-trip
			// test fails.
			seen := make(map[wplace.ChunkNumber]bool)
			mismatches := 0
			a := make([]byte, wplace.ChunkLength)
			b := make([]byte, wplace.ChunkLength)

			check := func(chunks []wplace.ChunkNumber) error {
				for _, c := range chunks {
					if seen[c] {
						continue
					}
					seen[c] = true
					if err := baseFetcher.Fetch(c, a); err != nil {
						log.Warn().Str("chunk", c.String()).Err(err).Msg("missing in base")
						mismatches++
						continue
					}
					if err := newFetcher.Fetch(c, b); err != nil {
						log.Warn().Str("chunk", c.String()).Err(err).Msg("missing in new")
						mismatches++
						continue
					}
					if !bytes.Equal(a, b) {
						log.Warn().Str("chunk", c.String()).Msg("chunk mismatch")
						mismatches++
					}
				}
				return nil
			}

			if err := check(baseFetcher.Chunks()); err != nil {
				return err
			}
			if err := check(newFetcher.Chunks()); err != nil {
				return err
			}

			if mismatches > 0 {
				return errors.Errorf("%d chunk mismatches found", mismatches)
			}
			log.Info().Msg("snapshots are identical")
			return nil
		},
	}
}
