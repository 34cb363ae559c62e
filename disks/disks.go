// Package disks holds the table of ADFS floppy formats the image decoder
// recognizes.
package disks

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

////////////////////////////////////////////////////////////////////////////////
// Geometry

type DiskGeometry struct {
	Name               string `csv:"name"`
	Slug               string `csv:"slug"`
	DiscType           string `csv:"disc_type"`
	FirstYearAvailable uint   `csv:"first_year_available"`
	FormFactor         string `csv:"form_factor"`

	BytesPerSector  uint `csv:"bytes_per_sector"`
	SectorsPerTrack uint `csv:"sectors_per_track"`
	// TotalTracks gives the number of tracks summed across all heads.
	TotalTracks uint `csv:"total_tracks"`
	Heads       uint `csv:"heads"`

	// RootDirectory is the byte offset of the root directory for old map
	// formats. New map formats locate the root through the disc record and
	// leave this 0.
	RootDirectory int64  `csv:"root_directory"`
	DirectorySize int64  `csv:"directory_size"`
	Notes         string `csv:"notes"`
}

// TotalSectors gives the number of sectors on the disc.
func (g *DiskGeometry) TotalSectors() uint {
	return g.SectorsPerTrack * g.TotalTracks
}

// TotalSizeBytes gives the size of the disc, which is also the expected size
// of an image file for it.
func (g *DiskGeometry) TotalSizeBytes() int64 {
	return int64(g.BytesPerSector) * int64(g.TotalSectors())
}

////////////////////////////////////////////////////////////////////////////////

//go:embed adfs-geometries.csv
var diskGeometriesRawCSV string
var diskGeometries map[string]DiskGeometry

// allGeometries keeps the table's row order for size-based searches.
var allGeometries []DiskGeometry

func GetPredefinedDiskGeometry(slug string) (DiskGeometry, error) {
	geometry, ok := diskGeometries[slug]
	if ok {
		return geometry, nil
	}

	err := fmt.Errorf("no predefined disk geometry exists with slug %q", slug)
	return DiskGeometry{}, err
}

// FindGeometryByDiscType returns the first geometry whose disc type matches.
func FindGeometryByDiscType(discType string) (DiskGeometry, bool) {
	for _, geometry := range allGeometries {
		if geometry.DiscType == discType {
			return geometry, true
		}
	}
	return DiskGeometry{}, false
}

// FindOldMapGeometryBySize returns the old map format with 256-byte sectors
// whose disc is exactly `totalSectors` sectors long.
func FindOldMapGeometryBySize(totalSectors uint) (DiskGeometry, bool) {
	for _, geometry := range allGeometries {
		if geometry.BytesPerSector != 256 {
			continue
		}
		if geometry.TotalSectors() == totalSectors {
			return geometry, true
		}
	}
	return DiskGeometry{}, false
}

// AllGeometries returns a copy of the table in file order.
func AllGeometries() []DiskGeometry {
	result := make([]DiskGeometry, len(allGeometries))
	copy(result, allGeometries)
	return result
}

func parseGeometries(raw io.Reader) ([]DiskGeometry, error) {
	csvReader := csv.NewReader(raw)
	csvReader.Comma = '|'

	var rows []DiskGeometry
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode disk geometries: %w", err)
	}
	return rows, nil
}

func init() {
	rows, err := parseGeometries(strings.NewReader(diskGeometriesRawCSV))
	if err != nil {
		panic(err)
	}

	diskGeometries = make(map[string]DiskGeometry, len(rows))
	for i, row := range rows {
		_, exists := diskGeometries[row.Slug]
		if exists {
			message := fmt.Errorf(
				"duplicate definition for disk %q found on row %d",
				row.Slug,
				i+1)
			panic(message)
		}
		diskGeometries[row.Slug] = row
	}
	allGeometries = rows
}
