package media

import "bytes"

// JPEG marker bytes used while scanning for the EXIF APP1 segment.
const (
	jpegMarkerPrefix = 0xFF
	jpegSOI          = 0xD8
	jpegSOS          = 0xDA
	jpegAPP1         = 0xE1
)

var exifHeader = []byte("Exif\x00\x00")

// extractEXIFSegment returns the complete APP1 EXIF segment (marker,
// length and payload) from a JPEG byte stream, or nil if the stream is
// not a JPEG or carries no EXIF block. Scanning stops at SOS since APP
// segments precede entropy-coded data.
func extractEXIFSegment(data []byte) []byte {
	if len(data) < 4 || data[0] != jpegMarkerPrefix || data[1] != jpegSOI {
		return nil
	}

	i := 2
	for i+4 <= len(data) {
		if data[i] != jpegMarkerPrefix {
			return nil
		}
		marker := data[i+1]
		if marker == jpegSOS {
			return nil
		}

		segLen := int(data[i+2])<<8 | int(data[i+3])
		if segLen < 2 || i+2+segLen > len(data) {
			return nil
		}

		if marker == jpegAPP1 && bytes.HasPrefix(data[i+4:i+2+segLen], exifHeader) {
			return data[i : i+2+segLen]
		}

		i += 2 + segLen
	}
	return nil
}

// spliceEXIFSegment inserts an APP1 EXIF segment directly after the SOI
// marker of an encoded JPEG. The input is returned unchanged when it is
// not a JPEG or the segment is empty.
func spliceEXIFSegment(encoded, segment []byte) []byte {
	if len(segment) == 0 || len(encoded) < 2 || encoded[0] != jpegMarkerPrefix || encoded[1] != jpegSOI {
		return encoded
	}

	out := make([]byte, 0, len(encoded)+len(segment))
	out = append(out, encoded[:2]...)
	out = append(out, segment...)
	out = append(out, encoded[2:]...)
	return out
}
