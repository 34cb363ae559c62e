// Package compression packs disc images into the `.rle.gz` format used for
// test fixtures and accepted by the CLI.
//
// An 800K ADFS floppy that holds a handful of files is almost entirely zero
// bytes. Run-length encoding the raw image first and then gzipping the result
// shrinks such images far more than gzip alone.
//
// The run-length encoding is the one used by the Microsoft BMP file format,
// also known as RLE8. If a byte B occurs N times where N >= 2, B is written
// twice, followed by a third (unsigned) byte indicating how many additional
// times B occurred. For example:
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
//
// Runs longer than 257 bytes are split, so a run of 300 "X" is stored as
// `XX 255 XX 41`. Pairs of identical bytes cost three bytes since the byte is
// its own escape sequence.
package compression
