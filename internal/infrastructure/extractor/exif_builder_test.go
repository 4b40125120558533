package extractor

import (
	"bytes"
	"encoding/binary"
)

const (
	tagExifPointer = 0x8769
	tagGPSPointer  = 0x8825

	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

var order = binary.LittleEndian

type exifTag struct {
	id    uint16
	typ   uint16
	count uint32
	value []byte
}

func asciiTag(id uint16, s string) exifTag {
	v := append([]byte(s), 0)

	return exifTag{id: id, typ: typeASCII, count: uint32(len(v)), value: v}
}

func shortTag(id uint16, v uint16) exifTag {
	b := make([]byte, 2)
	order.PutUint16(b, v)

	return exifTag{id: id, typ: typeShort, count: 1, value: b}
}

func longTag(id uint16, v uint32) exifTag {
	b := make([]byte, 4)
	order.PutUint32(b, v)

	return exifTag{id: id, typ: typeLong, count: 1, value: b}
}

func rationalTag(id uint16, pairs ...[2]uint32) exifTag {
	b := make([]byte, 0, 8*len(pairs))
	for _, p := range pairs {
		b = order.AppendUint32(b, p[0])
		b = order.AppendUint32(b, p[1])
	}

	return exifTag{id: id, typ: typeRational, count: uint32(len(pairs)), value: b}
}

// exifLayout describes a little-endian TIFF block: IFD0 plus optional EXIF
// and GPS sub-IFDs. gpsPointer, when non-zero, replaces the real GPS offset.
type exifLayout struct {
	ifd0       []exifTag
	exif       []exifTag
	gps        []exifTag
	gpsPointer uint32
}

func ifdSize(tags []exifTag) uint32 {
	n := uint32(2 + 12*len(tags) + 4)
	for _, t := range tags {
		if len(t.value) > 4 {
			n += uint32(len(t.value)+1) &^ 1
		}
	}

	return n
}

// encodeIFD writes the directory at absolute offset start, with values longer
// than four bytes placed right after it.
func encodeIFD(tags []exifTag, start uint32) []byte {
	var dir, data bytes.Buffer
	dataStart := start + uint32(2+12*len(tags)+4)

	_ = binary.Write(&dir, order, uint16(len(tags)))
	for _, t := range tags {
		_ = binary.Write(&dir, order, t.id)
		_ = binary.Write(&dir, order, t.typ)
		_ = binary.Write(&dir, order, t.count)

		if len(t.value) <= 4 {
			v := make([]byte, 4)
			copy(v, t.value)
			dir.Write(v)
			continue
		}

		_ = binary.Write(&dir, order, dataStart+uint32(data.Len()))
		data.Write(t.value)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(&dir, order, uint32(0))

	dir.Write(data.Bytes())

	return dir.Bytes()
}

func (l exifLayout) tiff() []byte {
	const ifd0Start = 8

	ifd0 := append([]exifTag(nil), l.ifd0...)
	if len(l.exif) > 0 {
		ifd0 = append(ifd0, longTag(tagExifPointer, 0))
	}
	if len(l.gps) > 0 || l.gpsPointer != 0 {
		ifd0 = append(ifd0, longTag(tagGPSPointer, 0))
	}

	exifStart := ifd0Start + ifdSize(ifd0)
	gpsStart := exifStart
	if len(l.exif) > 0 {
		gpsStart += ifdSize(l.exif)
	}
	if l.gpsPointer != 0 {
		gpsStart = l.gpsPointer
	}

	for i := range ifd0 {
		switch ifd0[i].id {
		case tagExifPointer:
			ifd0[i] = longTag(tagExifPointer, exifStart)
		case tagGPSPointer:
			ifd0[i] = longTag(tagGPSPointer, gpsStart)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("II")
	_ = binary.Write(&buf, order, uint16(42))
	_ = binary.Write(&buf, order, uint32(ifd0Start))
	buf.Write(encodeIFD(ifd0, ifd0Start))
	if len(l.exif) > 0 {
		buf.Write(encodeIFD(l.exif, exifStart))
	}
	if len(l.gps) > 0 && l.gpsPointer == 0 {
		buf.Write(encodeIFD(l.gps, gpsStart))
	}

	return buf.Bytes()
}

// jpeg wraps the TIFF block into an APP1 segment of a minimal JPEG stream.
func (l exifLayout) jpeg() []byte {
	payload := append([]byte("Exif\x00\x00"), l.tiff()...)

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9})

	return buf.Bytes()
}
