package main

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/dargueta/adfuse/namespace"
)

// CatalogueRow is one object in an image, as written by `adfuse catalogue`.
type CatalogueRow struct {
	Path        string `csv:"path"`
	Kind        string `csv:"kind"`
	LoadAddress string `csv:"load_address"`
	ExecAddress string `csv:"exec_address"`
	Length      int64  `csv:"length"`
	Attributes  string `csv:"attributes"`
	FileType    string `csv:"file_type"`
	MIME        string `csv:"mime_type"`
	Modified    string `csv:"modified"`
}

// Catalogue walks the namespace depth first in directory order.
func Catalogue(ns *namespace.Namespace) []CatalogueRow {
	rows := []CatalogueRow{}
	catalogueDirectory(ns, ns.Root(), "/", &rows)
	return rows
}

func catalogueDirectory(
	ns *namespace.Namespace,
	directory *namespace.Directory,
	dirPath string,
	rows *[]CatalogueRow,
) {
	for child := range directory.Children() {
		childPath := path.Join(dirPath, child.Name())
		stat := child.Attributes()

		switch node := child.(type) {
		case *namespace.Directory:
			*rows = append(*rows, CatalogueRow{
				Path:     childPath,
				Kind:     "directory",
				Modified: stat.LastModified.UTC().Format(time.RFC3339),
			})
			catalogueDirectory(ns, node, childPath, rows)
		case *namespace.File:
			row := CatalogueRow{
				Path:        childPath,
				Kind:        "file",
				LoadAddress: fmt.Sprintf("%08X", node.Entry.LoadAddress),
				ExecAddress: fmt.Sprintf("%08X", node.Entry.ExecAddress),
				Length:      stat.Size,
				Attributes:  node.Entry.Attributes.String(),
				Modified:    stat.LastModified.UTC().Format(time.RFC3339),
			}
			// Old discs only have a filetype where the file was stamped with one.
			if ns.Encoder().Extended() || node.Entry.HasFileType() {
				fileType := ns.Encoder().FileType(node.Entry)
				row.FileType = fmt.Sprintf("%03X", fileType.Code)
				row.MIME = fileType.MIME
			}
			*rows = append(*rows, row)
		}
	}
}

// WriteCatalogue writes [Catalogue] to `output` as CSV with a header row.
func WriteCatalogue(ns *namespace.Namespace, output io.Writer) error {
	return gocsv.Marshal(Catalogue(ns), output)
}
