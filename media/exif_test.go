package media

import (
	"bytes"
	"testing"
)

func TestParseEXIFDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"valid", "2023:07:14 18:22:05", true},
		{"empty", "", false},
		{"iso format rejected", "2023-07-14 18:22:05", false},
		{"garbage", "not a date", false},
		{"date only", "2023:07:14", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEXIFDate(tt.input)
			if tt.valid && got == nil {
				t.Errorf("ParseEXIFDate(%q) = nil, want value", tt.input)
			}
			if !tt.valid && got != nil {
				t.Errorf("ParseEXIFDate(%q) = %d, want nil", tt.input, *got)
			}
		})
	}
}

func TestParseEXIFDateValue(t *testing.T) {
	got := ParseEXIFDate("2023:07:14 18:22:05")
	if got == nil {
		t.Fatal("expected value")
	}
	// 2023-07-14T18:22:05Z
	if *got != 1689358925 {
		t.Errorf("got %d, want 1689358925", *got)
	}
}

// buildJPEGWithEXIF assembles a minimal marker stream: SOI, APP1 (EXIF),
// then an SOS marker so the scanner terminates.
func buildJPEGWithEXIF(payload []byte) []byte {
	body := append([]byte("Exif\x00\x00"), payload...)
	segLen := len(body) + 2
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1, byte(segLen >> 8), byte(segLen & 0xFF)}
	out = append(out, body...)
	out = append(out, 0xFF, 0xDA, 0x00, 0x02)
	return out
}

func TestExtractEXIFSegment(t *testing.T) {
	jpegData := buildJPEGWithEXIF([]byte{0x01, 0x02, 0x03})
	seg := extractEXIFSegment(jpegData)
	if seg == nil {
		t.Fatal("expected EXIF segment")
	}
	if seg[1] != jpegAPP1 {
		t.Errorf("segment marker = %#x, want APP1", seg[1])
	}
	if !bytes.Contains(seg, []byte("Exif\x00\x00")) {
		t.Error("segment missing EXIF header")
	}
}

func TestExtractEXIFSegmentAbsent(t *testing.T) {
	// SOI followed directly by SOS: no APP segments at all
	plain := []byte{0xFF, 0xD8, 0xFF, 0xDA, 0x00, 0x02}
	if seg := extractEXIFSegment(plain); seg != nil {
		t.Errorf("expected nil, got %v", seg)
	}

	if seg := extractEXIFSegment([]byte("not a jpeg")); seg != nil {
		t.Errorf("expected nil for non-JPEG input, got %v", seg)
	}
}

func TestSpliceEXIFSegment(t *testing.T) {
	source := buildJPEGWithEXIF([]byte{0xAA, 0xBB})
	segment := extractEXIFSegment(source)

	encoded := []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x02}
	out := spliceEXIFSegment(encoded, segment)

	if got := extractEXIFSegment(out); got == nil {
		t.Fatal("spliced output lost the EXIF segment")
	}
	if len(out) != len(encoded)+len(segment) {
		t.Errorf("output length %d, want %d", len(out), len(encoded)+len(segment))
	}

	// nil segment leaves the stream untouched
	if got := spliceEXIFSegment(encoded, nil); !bytes.Equal(got, encoded) {
		t.Error("nil segment must be a passthrough")
	}
}

func TestExtractMetadataNoEXIF(t *testing.T) {
	store := newTestStore(t)
	rawPath := writeTestJPEG(t, store, "plain.jpg", 20, 20)
	full, err := store.GetFullPath(rawPath)
	if err != nil {
		t.Fatalf("GetFullPath: %v", err)
	}

	meta, err := ExtractMetadata(full)
	if err != nil {
		t.Fatalf("ExtractMetadata on EXIF-less file must not fail: %v", err)
	}
	if !meta.IsEmpty() {
		t.Errorf("expected empty metadata, got %+v", meta)
	}
}
