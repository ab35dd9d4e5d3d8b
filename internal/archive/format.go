package archive

// entryRow is one row of the flat (offset, length) entry table, decoded
// in one call via ghostiam/binstruct rather than a manual binary.Read
// loop.
type entryRow struct {
	Offset uint32
	Length uint32
}

// entryTableWire is the portion of the AFS header binstruct decodes in
// a single call: the entry count followed by exactly that many table
// rows.
type entryTableWire struct {
	Count uint32
	Rows  []entryRow `bin:"len:Count"`
}

// footerRow is the 48-byte per-entry footer record: a zero-padded name
// field, a six-field timestamp (year, month, day, hour, minute,
// second), and the unexplained 4-byte tag field (see
// archive.Entry.Tag).
type footerRow struct {
	Name                                   [32]byte
	Year, Month, Day, Hour, Minute, Second int16
	Tag                                    uint32
}
