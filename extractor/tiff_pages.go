package extractor

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/tiff"
)

// TIFF tag and field type IDs used while rebuilding pages.
const (
	tagStripOffsets    = 273
	tagStripByteCounts = 279
	tagTileOffsets     = 324
	tagTileByteCounts  = 325

	tagSubIFDs  = 330
	tagJPEGIF   = 513
	tagJPEGIFLn = 514
	tagExifIFD  = 34665
	tagGPSIFD   = 34853

	typeShort = 3
	typeLong  = 4
)

// splitTIFFPages walks every IFD of a (possibly multi-page) TIFF and rebuilds
// each page as a standalone single-IFD TIFF file, with strip/tile data copied
// over and all offsets relocated. Pointer tags into the original file
// (sub-IFDs, EXIF, GPS, old-style JPEG) are dropped since their targets are
// not carried along.
func splitTIFFPages(data []byte) ([][]byte, error) {
	t, err := tiff.Parse(tiff.NewReadAtReadSeeker(bytes.NewReader(data)), nil, nil)
	if err != nil {
		return nil, err
	}

	var order binary.ByteOrder = binary.LittleEndian
	magic := t.Order()
	if magic == "MM" {
		order = binary.BigEndian
	}

	ifds := t.IFDs()
	if len(ifds) == 0 {
		return nil, fmt.Errorf("tiff has no IFDs")
	}
	pages := make([][]byte, 0, len(ifds))
	for i, ifd := range ifds {
		page, err := buildSinglePage(data, magic, order, ifd)
		if err != nil {
			return nil, fmt.Errorf("rebuilding page %d: %w", i+1, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

type ifdEntry struct {
	tag    uint16
	typ    uint16
	count  uint32
	val    []byte // raw value bytes in file byte order
	extOff uint32 // data-area offset when len(val) > 4
}

func buildSinglePage(data []byte, magic string, order binary.ByteOrder, ifd tiff.IFD) ([]byte, error) {
	offTag, cntTag := uint16(tagStripOffsets), uint16(tagStripByteCounts)
	if !ifd.HasField(tagStripOffsets) && ifd.HasField(tagTileOffsets) {
		offTag, cntTag = tagTileOffsets, tagTileByteCounts
	}
	if !ifd.HasField(offTag) || !ifd.HasField(cntTag) {
		return nil, fmt.Errorf("page has no pixel data offsets")
	}

	segs, err := readSegments(data, order, ifd, offTag, cntTag)
	if err != nil {
		return nil, err
	}

	var entries []ifdEntry
	for _, f := range ifd.Fields() {
		id := f.Tag().ID()
		switch id {
		case tagSubIFDs, tagExifIFD, tagGPSIFD, tagJPEGIF, tagJPEGIFLn:
			continue
		case offTag:
			// Rewritten below once the layout is known. Always stored as
			// LONG so relocated offsets cannot overflow a SHORT.
			entries = append(entries, ifdEntry{
				tag:   offTag,
				typ:   typeLong,
				count: uint32(len(segs)),
				val:   make([]byte, 4*len(segs)),
			})
		default:
			entries = append(entries, ifdEntry{
				tag:   id,
				typ:   f.Type().ID(),
				count: uint32(f.Count()),
				val:   f.Value().Bytes(),
			})
		}
	}

	// Layout: 8-byte header, IFD, overflow field values, then segment data.
	n := len(entries)
	cur := uint32(8 + 2 + n*12 + 4)
	for i := range entries {
		if len(entries[i].val) > 4 {
			entries[i].extOff = cur
			cur += uint32(len(entries[i].val))
			cur += cur % 2
		}
	}
	segOffsets := make([]uint32, len(segs))
	for i, s := range segs {
		segOffsets[i] = cur
		cur += uint32(len(s))
		cur += cur % 2
	}
	for i := range entries {
		if entries[i].tag == offTag {
			for j, so := range segOffsets {
				order.PutUint32(entries[i].val[4*j:], so)
			}
		}
	}

	buf := make([]byte, cur)
	copy(buf[0:2], magic)
	order.PutUint16(buf[2:], 42)
	order.PutUint32(buf[4:], 8)
	order.PutUint16(buf[8:], uint16(n))
	p := 10
	for _, e := range entries {
		order.PutUint16(buf[p:], e.tag)
		order.PutUint16(buf[p+2:], e.typ)
		order.PutUint32(buf[p+4:], e.count)
		if len(e.val) <= 4 {
			copy(buf[p+8:p+12], e.val)
		} else {
			order.PutUint32(buf[p+8:], e.extOff)
			copy(buf[e.extOff:], e.val)
		}
		p += 12
	}
	// next-IFD offset after the entries stays zero: single page.
	for i, s := range segs {
		copy(buf[segOffsets[i]:], s)
	}
	return buf, nil
}

func readSegments(data []byte, order binary.ByteOrder, ifd tiff.IFD, offTag, cntTag uint16) ([][]byte, error) {
	offsets, err := fieldUints(ifd.GetField(offTag), order)
	if err != nil {
		return nil, err
	}
	counts, err := fieldUints(ifd.GetField(cntTag), order)
	if err != nil {
		return nil, err
	}
	if len(offsets) != len(counts) {
		return nil, fmt.Errorf("offset/count mismatch: %d vs %d", len(offsets), len(counts))
	}

	segs := make([][]byte, len(offsets))
	for i := range offsets {
		start, end := uint64(offsets[i]), uint64(offsets[i])+uint64(counts[i])
		if end > uint64(len(data)) || start > end {
			return nil, fmt.Errorf("segment %d out of bounds [%d:%d)", i, start, end)
		}
		segs[i] = data[start:end]
	}
	return segs, nil
}

func fieldUints(f tiff.Field, order binary.ByteOrder) ([]uint32, error) {
	val := f.Value().Bytes()
	switch f.Type().ID() {
	case typeShort:
		if len(val) < 2*int(f.Count()) {
			return nil, fmt.Errorf("short field %d truncated", f.Tag().ID())
		}
		out := make([]uint32, f.Count())
		for i := range out {
			out[i] = uint32(order.Uint16(val[2*i:]))
		}
		return out, nil
	case typeLong:
		if len(val) < 4*int(f.Count()) {
			return nil, fmt.Errorf("long field %d truncated", f.Tag().ID())
		}
		out := make([]uint32, f.Count())
		for i := range out {
			out[i] = order.Uint32(val[4*i:])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %d has unexpected type %d", f.Tag().ID(), f.Type().ID())
	}
}
