// Package adfs decodes Acorn ADFS floppy and hard disc images into an
// in-memory tree of directory and file records.
//
// Supported layouts:
//
//   - Old map, old directories: the S, M and L floppy formats ("ads", "adm",
//     "adl"), plus non-standard sizes of the same layout ("adf").
//   - Old map, new directories: the Arthur D format ("adD").
//   - New map, new directories: the RISC OS E format ("adE") and discs with a
//     boot block such as the F format ("adEbig").
//
// The whole tree, including every file's contents, is read while the disc is
// opened. Nothing touches the underlying stream afterwards.
package adfs
