package adfs

// OldMapChecksum computes the check byte stored at the end of each of the two
// sectors of an old free space map. `sector` must be at least 255 bytes.
func OldMapChecksum(sector []byte) byte {
	sum := uint(255)
	for i := 254; i >= 0; i-- {
		if sum > 255 {
			sum = (sum + 1) & 0xFF
		}
		sum += uint(sector[i])
	}
	return byte(sum & 0xFF)
}

// ZoneCheck computes the check byte stored in the first byte of a new map
// zone. `zone` is the raw zone, one sector long. Its first byte doesn't
// contribute to the result.
func ZoneCheck(zone []byte) byte {
	var v0, v1, v2, v3 uint
	for i := len(zone) - 4; i > 0; i -= 4 {
		v0 += uint(zone[i]) + (v3 >> 8)
		v3 &= 0xFF
		v1 += uint(zone[i+1]) + (v0 >> 8)
		v0 &= 0xFF
		v2 += uint(zone[i+2]) + (v1 >> 8)
		v1 &= 0xFF
		v3 += uint(zone[i+3]) + (v2 >> 8)
		v2 &= 0xFF
	}
	v0 += v3 >> 8
	v1 += uint(zone[1]) + (v0 >> 8)
	v2 += uint(zone[2]) + (v1 >> 8)
	v3 += uint(zone[3]) + (v2 >> 8)
	return byte((v0 ^ v1 ^ v2 ^ v3) & 0xFF)
}

// CrossCheck XORs together the cross check bytes (byte 3) of every zone in a
// new map. A consistent map gives 0xFF.
func CrossCheck(mapData []byte, sectorSize int) byte {
	var result byte
	for offset := 0; offset+3 < len(mapData); offset += sectorSize {
		result ^= mapData[offset+3]
	}
	return result
}
