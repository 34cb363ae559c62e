package namespace

import "time"

// BetweenEpochs is the number of centiseconds between the RISC OS epoch
// (1900-01-01) and the Unix epoch: 70 years, 17 of them leap years.
const BetweenEpochs = ((365 * 70) + 17) * 24 * 360000

// CentisecondsToUnix converts a 40-bit RISC OS timestamp to seconds since the
// Unix epoch, truncating toward zero.
func CentisecondsToUnix(centiseconds uint64) int64 {
	return (int64(centiseconds) - BetweenEpochs) / 100
}

// RISCOSTimeToUnix extracts the timestamp stored in a file's load and
// execution addresses: the low 32 bits are the execution address, the top 8
// the low byte of the load address.
func RISCOSTimeToUnix(loadAddress, execAddress uint32) int64 {
	return CentisecondsToUnix(uint64(loadAddress&0xFF)<<32 | uint64(execAddress))
}

// RISCOSTime is [RISCOSTimeToUnix] as a [time.Time].
func RISCOSTime(loadAddress, execAddress uint32) time.Time {
	return time.Unix(RISCOSTimeToUnix(loadAddress, execAddress), 0)
}
