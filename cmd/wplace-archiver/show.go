package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/diffformat"
)

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show DIFF",
		Short: "Print a diff file's metadata and chunk counts",
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

			changed := 0
			for _, e := range dr.Index() {
				if e.IsChanged() {
					changed++
				}
			}

			if asJSON {
				out := struct {
					Name         string `json:"name"`
					Parent       string `json:"parent"`
					CreationTime int64  `json:"creation_time"`
					TotalChunks  int    `json:"total_chunks"`
					ChangedCount int    `json:"changed_chunks"`
				}{
					Name:         dr.Metadata.Name,
					Parent:       dr.Metadata.Parent,
					CreationTime: dr.Metadata.CreationTime,
					TotalChunks:  dr.Len(),
					ChangedCount: changed,
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Printf("name:          %s\n", dr.Metadata.Name)
			fmt.Printf("parent:        %s\n", dr.Metadata.Parent)
			fmt.Printf("creation_time: %d\n", dr.Metadata.CreationTime)
			fmt.Printf("total chunks:  %d\n", dr.Len())
			fmt.Printf("changed:       %d\n", changed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
