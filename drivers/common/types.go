// Package common contains definitions of fundamental types and functions used
// by the image decoders.
package common

// LogicalBlock is the index of a block relative to the start of a stream.
type LogicalBlock uint
