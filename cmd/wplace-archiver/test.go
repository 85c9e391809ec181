package main

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/diffformat"
	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test DIFF",
		Short: "Decompress every payload in a diff file, discarding output, to verify integrity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			dr, err := diffformat.Open(f)
			if err != nil {
				return err
			}

			dec, err := zstd.NewReader(nil)
			if err != nil {
				return errors.Wrap(wplaceerr.ErrIO, err.Error())
			}
			defer dec.Close()

			checked := 0
			for _, e := range dr.Index() {
				if !e.IsChanged() {
					continue
				}
				payload, err := dr.OpenPayload(e)
				if err != nil {
					return err
				}
				raw, err := io.ReadAll(payload)
				if err != nil {
					return errors.Wrap(wplaceerr.ErrIO, err.Error())
				}
				mask, err := dec.DecodeAll(raw, make([]byte, 0, wplace.ChunkLength))
				if err != nil {
					return errors.Wrapf(wplaceerr.ErrFormat, "chunk %s: %v", e.Chunk, err)
				}
				if len(mask) != wplace.ChunkLength {
					return errors.Wrapf(wplaceerr.ErrFormat, "chunk %s: decompressed mask is %d bytes", e.Chunk, len(mask))
				}
				checked++
			}

			log.Info().Int("changed_chunks_verified", checked).Int("total_chunks", dr.Len()).Msg("diff file integrity OK")
			return nil
		},
	}
}
