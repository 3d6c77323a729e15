// Package trace reads recorded allocation traces.
//
// A trace is a 16 byte header followed by fixed-size operation records:
//
//	offset  size  field
//	0       8     slot_count
//	8       8     operation_count
//	16      32*n  records
//
// Each record is a kind discriminant followed by the kind's fields, padded
// to the size of the largest variant:
//
//	offset  size  field
//	0       8     kind (1 alloc, 2 free, 3 realloc)
//	8       8     slot
//	16      8     timestamp
//	24      8     size (unused by free)
//
// All integers are little-endian. Records are decoded in place from the
// underlying buffer, which for files is a read-only shared mapping held for
// the lifetime of the Trace. Records are only ever exposed in file order.
package trace
