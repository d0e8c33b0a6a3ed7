package archive2

// parseBits extracts the inclusive bit range start..end (bit 0 is the least significant) as an unsigned integer
func parseBits(raw uint16, start, end uint) uint16 {
	var val uint16
	for i := start; i <= end; i++ {
		if raw&(1<<i) != 0 {
			val += 1 << (i - start)
		}
	}
	return val
}

// bit reports whether a single bit is set
func bit(raw uint16, i uint) bool {
	return raw&(1<<i) != 0
}

// parse360Angle decodes a 0-360 angle: bit 15 is 180 degrees and every lower bit down to bit 3 is half the
// previous one. Bits 0-2 are unused.
func parse360Angle(raw uint16) float64 {
	angle := 0.0
	for i := 15; i >= 3; i-- {
		if bit(raw, uint(i)) {
			angle += 180 / float64(uint(1)<<(15-i))
		}
	}
	return angle
}

// parseAzimuthRate decodes the signed antenna rate in deg/s: bit 14 is 22.5 halving down to bit 3, bit 15 is the sign.
func parseAzimuthRate(raw uint16) float64 {
	rate := 0.0
	for i := 14; i >= 3; i-- {
		if bit(raw, uint(i)) {
			rate += 22.5 / float64(uint(1)<<(14-i))
		}
	}
	if bit(raw, 15) {
		rate = -rate
	}
	return rate
}

// legacyAngle decodes the message 1 coded angles, (value >> 3) * 180/4096
func legacyAngle(raw uint16) float32 {
	return float32(raw>>3) * 180 / 4096
}
