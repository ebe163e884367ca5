// pcdinfo prints the header metadata of PCD files.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pcdio/pkg/pcd"
)

var cmd = &cobra.Command{
	Use:           "pcdinfo <file>...",
	Short:         "print PCD header metadata",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed bool
		for _, path := range args {
			if err := report(path); err != nil {
				slog.Error("read header", "file", path, "err", err)
				failed = true
			}
		}
		if failed {
			return fmt.Errorf("some files could not be read")
		}
		return nil
	},
}

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func report(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := pcd.ParseHeader(f)
	if err != nil {
		return err
	}

	fields := make([]string, len(h.Fields))
	for i, name := range h.Fields {
		desc := name + "(" + string(h.Types[i]) + strconv.Itoa(h.Sizes[i])
		if i < len(h.Counts) && h.Counts[i] > 1 {
			desc += "x" + strconv.Itoa(h.Counts[i])
		}
		fields[i] = desc + ")"
	}

	fmt.Printf("%s:\n", path)
	fmt.Printf("  version    %s\n", h.Version)
	fmt.Printf("  fields     %s\n", strings.Join(fields, " "))
	fmt.Printf("  width      %d\n", h.Width)
	fmt.Printf("  height     %d\n", h.Height)
	fmt.Printf("  points     %d\n", h.Points)
	fmt.Printf("  encoding   %s\n", h.Data)
	fmt.Printf("  organized  %v\n", h.Height > 1)
	fmt.Printf("  record     %d bytes\n", h.RecordSize())
	if len(h.Viewpoint) >= 7 {
		fmt.Printf("  viewpoint  %v\n", h.Viewpoint)
	}
	return nil
}
