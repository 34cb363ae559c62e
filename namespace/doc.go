// Package namespace presents a decoded ADFS directory tree as a POSIX-style
// namespace.
//
// Resolution is stateless. Every call walks the tree from the root, so the
// same path against the same tree always gives the same answer. Names shown
// to the host never contain "/": RISC OS uses "." as its path separator and
// "/" as the extension separator, so the two are swapped. Files on new map
// discs get their filetype appended as a three-digit hex suffix. Files on
// older discs instead get a synthetic ".inf" sidecar holding their load and
// execution addresses.
package namespace
