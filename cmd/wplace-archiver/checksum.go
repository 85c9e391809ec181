package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/archivehash"
	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/wplace"
)

// checksum computes a single whole-archive digest over a snapshot's
// full per-chunk content, additive on top of the 32-bit per-chunk CRC
// already carried in each diff's index.
func newChecksumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checksum ARCHIVE",
		Short: "Compute a whole-archive digest of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fetch.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			acc := archivehash.New()
			buf := make([]byte, wplace.ChunkLength)
			for _, c := range f.Chunks() {
				if err := f.Fetch(c, buf); err != nil {
					return err
				}
				acc.AddChunk(c, buf)
			}

			log.Info().Int("chunks", f.Len()).Msg("checksum computed")
			fmt.Printf("%x\n", acc.Sum())
			return nil
		},
	}
}
