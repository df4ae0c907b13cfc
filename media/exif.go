package media

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIFDateLayout is the fixed capture-date format written by cameras.
const EXIFDateLayout = "2006:01:02 15:04:05"

// exposureProgramNames maps the EXIF ExposureProgram code to its label.
var exposureProgramNames = map[int]string{
	0: "Not Defined",
	1: "Manual",
	2: "Program AE",
	3: "Aperture-priority AE",
	4: "Shutter speed priority AE",
	5: "Creative (Slow speed)",
	6: "Action (High speed)",
	7: "Portrait",
	8: "Landscape",
}

// flashNames maps the low bits of the EXIF Flash code.
var flashNames = map[int]string{
	0x00: "No Flash",
	0x01: "Fired",
	0x05: "Fired, Return not detected",
	0x07: "Fired, Return detected",
	0x08: "On, Did not fire",
	0x09: "On, Fired",
	0x10: "Off, Did not fire",
	0x18: "Auto, Did not fire",
	0x19: "Auto, Fired",
	0x20: "No flash function",
}

// ParseEXIFDate parses a capture datetime in the fixed EXIF layout.
// Unparsable or empty input yields nil rather than an error.
func ParseEXIFDate(value string) *int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(EXIFDateLayout, value)
	if err != nil {
		return nil
	}
	ts := t.Unix()
	return &ts
}

// helper to safely get and convert a rational tag (like Aperture, FocalLength)
func getRational(exifData *exif.Exif, tagName exif.FieldName) *float64 {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		// sometimes stored as Int instead
		valInt, errInt := tag.Int(0)
		if errInt == nil {
			fVal := float64(valInt)
			return &fVal
		}
		return nil
	}
	val := float64(num) / float64(den)
	return &val
}

// helper to safely get and convert an integer tag (like ISO)
func getInt(exifData *exif.Exif, tagName exif.FieldName) *int {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &val
}

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val := strings.TrimRight(strings.Trim(tag.String(), `"`), "\x00")
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}

// helper mapping an integer code tag through a name table
func getCoded(exifData *exif.Exif, tagName exif.FieldName, names map[int]string) *string {
	code := getInt(exifData, tagName)
	if code == nil {
		return nil
	}
	name, ok := names[*code]
	if !ok {
		name = fmt.Sprintf("Unknown (%d)", *code)
	}
	return &name
}

// ExtractMetadata pulls the fixed metadata field set from the original
// file at filePath. A file without EXIF data yields an empty result, not
// an error; individual missing or malformed tags yield nil fields. The
// XMP rating block is outside the EXIF decoder's reach and stays nil.
func ExtractMetadata(filePath string) (*ExtractedMetadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	exifData, err := exif.Decode(file)
	if err != nil {
		// not necessarily fatal, the file might just lack EXIF data
		log.Printf("metadata: no EXIF data found for %s: %v", filePath, err)
		return &ExtractedMetadata{}, nil
	}

	meta := &ExtractedMetadata{
		CameraMake:           getString(exifData, exif.Make),
		CameraModel:          getString(exifData, exif.Model),
		LensModel:            getString(exifData, exif.LensModel),
		FocalLength:          getRational(exifData, exif.FocalLength),
		FocalLength35mm:      getRational(exifData, exif.FocalLengthIn35mmFilm),
		Aperture:             getRational(exifData, exif.FNumber),
		ShutterSpeed:         getRational(exifData, exif.ExposureTime),
		ISO:                  getInt(exifData, exif.ISOSpeedRatings),
		ExposureProgram:      getCoded(exifData, exif.ExposureProgram, exposureProgramNames),
		ExposureCompensation: getRational(exifData, exif.ExposureBiasValue),
		Flash:                getCoded(exifData, exif.Flash, flashNames),
		Copyright:            getString(exifData, exif.Copyright),
	}

	if dateTag, err := exifData.Get(exif.DateTimeOriginal); err == nil && dateTag != nil {
		if raw, err := dateTag.StringVal(); err == nil {
			meta.CaptureDate = ParseEXIFDate(raw)
		}
	}

	if lat, lon, err := exifData.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &lon
	}

	return meta, nil
}
