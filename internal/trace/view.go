package trace

import (
	"fmt"
	"math"
)

// View is a read-only window over an encoded trace. It never copies the
// record area; each Op call decodes one record from the backing buffer.
type View struct {
	data   []byte
	header Header
}

// NewView interprets data as an encoded trace. When checkLength is true the
// buffer must hold every record the header declares; otherwise only the
// header is required and a missing record is reported by Op when reached.
func NewView(data []byte, checkLength bool) (*View, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(data), HeaderSize)
	}

	v := &View{data: data, header: decodeHeader(data)}
	if checkLength {
		if want, ok := v.requiredSize(); !ok || uint64(len(data)) < want {
			return nil, fmt.Errorf("%w: %d bytes, header declares %d operations",
				ErrTruncated, len(data), v.header.OperationCount)
		}
	}
	return v, nil
}

func (v *View) requiredSize() (uint64, bool) {
	n := v.header.OperationCount
	if n > (math.MaxUint64-HeaderSize)/RecordSize {
		return 0, false
	}
	return HeaderSize + n*RecordSize, true
}

// Header returns the decoded trace header.
func (v *View) Header() Header {
	return v.header
}

// SlotCount returns the number of logical slots the trace uses.
func (v *View) SlotCount() uint64 {
	return v.header.SlotCount
}

// OperationCount returns the number of records declared by the header.
func (v *View) OperationCount() uint64 {
	return v.header.OperationCount
}

// Op decodes the i-th record.
func (v *View) Op(i uint64) (Op, error) {
	if i >= v.header.OperationCount {
		return Op{}, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, i, v.header.OperationCount)
	}
	off := uint64(HeaderSize) + i*RecordSize
	if off+RecordSize > uint64(len(v.data)) {
		return Op{}, fmt.Errorf("%w: record %d ends past byte %d", ErrTruncated, i, len(v.data))
	}
	op, err := decodeOp(v.data[off : off+RecordSize])
	if err != nil {
		return Op{}, fmt.Errorf("record %d: %w", i, err)
	}
	return op, nil
}
