package adfs

// ReadUint decodes a little-endian unsigned integer `size` bytes long starting
// at `offset` in `data`. `size` must be between 0 and 4. Bytes that fall
// outside of `data` read as zero, so this never panics on truncated input.
func ReadUint(data []byte, offset, size int) uint32 {
	var value uint32
	for i := size - 1; i >= 0; i-- {
		value <<= 8
		position := offset + i
		if position >= 0 && position < len(data) {
			value |= uint32(data[position])
		}
	}
	return value
}

// readName decodes a name terminated by a control character or by the end of
// its field. If `stripAttributes` is set the top bit of each byte is ignored,
// since old directories store attribute flags there.
func readName(data []byte, offset, maxLength int, stripAttributes bool) string {
	name := make([]rune, 0, maxLength)
	for i := 0; i < maxLength && offset+i < len(data); i++ {
		c := data[offset+i]
		if stripAttributes {
			c &= 0x7F
		}
		if c < 0x20 || c == 0x7F {
			break
		}
		name = append(name, rune(c))
	}
	return string(name)
}

// hasSignature returns true if one of the directory signatures starts at
// `offset`.
func hasSignature(data []byte, offset int) bool {
	if offset < 0 || offset+4 > len(data) {
		return false
	}
	signature := string(data[offset : offset+4])
	return signature == "Hugo" || signature == "Nick"
}
