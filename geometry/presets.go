// Package geometry is a convenience layer over blockdev: a table of named
// device geometries (floppy sizes, toy hard disks, the tiny image used in
// spec.md's own worked examples) so a caller can say "floppy1440" instead of
// computing block counts by hand. It has no dependency on invfs internals —
// it only produces a (BlockSize, TotalBlocks) pair — and is grounded on
// disks/disks.go's DiskGeometry table, which loads its presets from an
// embedded CSV the same way.
package geometry

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Preset names one predefined device geometry.
type Preset struct {
	Slug        string `csv:"slug"`
	TotalBlocks uint   `csv:"total_blocks"`
	BlockSize   uint   `csv:"block_size"`
	Notes       string `csv:"notes"`
}

//go:embed presets.csv
var rawPresetsCSV string

var presets map[string]Preset

func init() {
	presets = make(map[string]Preset)
	reader := strings.NewReader(rawPresetsCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Preset) error {
		if _, exists := presets[row.Slug]; exists {
			return fmt.Errorf("duplicate geometry preset slug %q", row.Slug)
		}
		presets[row.Slug] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// Lookup returns the named preset, or an error if no such preset exists.
func Lookup(slug string) (Preset, error) {
	preset, ok := presets[slug]
	if !ok {
		return Preset{}, fmt.Errorf("no predefined geometry preset named %q", slug)
	}
	return preset, nil
}

// Names returns every known preset slug.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
