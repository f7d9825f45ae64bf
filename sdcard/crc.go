package sdcard

// CRC7Polynomial is the CRC-7 polynomial used by SD command frames (x^7 + x^3 + 1).
const CRC7Polynomial = 0x89

// CRC7 computes the 7-bit CRC of the given data as used in SD command
// frames. The result occupies the low 7 bits of the returned byte; the
// frame stores it shifted left by one with the end bit set.
func CRC7(data []byte) byte {
	var crc byte

	for _, b := range data {
		crc ^= b

		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				// the polynomial is applied left-aligned in the
				// working byte, so its x^7 term shifts out
				crc = (crc << 1) ^ (CRC7Polynomial << 1 & 0xFF)
			} else {
				crc <<= 1
			}
		}
	}

	return crc >> 1
}
