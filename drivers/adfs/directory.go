package adfs

// directoryLayout gives the positions of the parts of a directory that differ
// between the old (0x500 byte) and new (0x800 byte) formats. Both start with a
// sequence number and a four-byte signature, followed by 26-byte entries.
type directoryLayout struct {
	size       int
	maxEntries int
	// attributesInName is set for old directories, which keep the attribute
	// bits in the top bit of the first seven bytes of each name.
	attributesInName   bool
	parentOffset       int
	titleOffset        int
	nameOffset         int
	endSequenceOffset  int
	endSignatureOffset int
}

var oldDirectoryLayout = directoryLayout{
	size:               0x500,
	maxEntries:         47,
	attributesInName:   true,
	nameOffset:         0x4CC,
	parentOffset:       0x4D6,
	titleOffset:        0x4D9,
	endSequenceOffset:  0x4FA,
	endSignatureOffset: 0x4FB,
}

var newDirectoryLayout = directoryLayout{
	size:               0x800,
	maxEntries:         77,
	parentOffset:       0x7DA,
	titleOffset:        0x7DD,
	nameOffset:         0x7F0,
	endSequenceOffset:  0x7FA,
	endSignatureOffset: 0x7FB,
}

const (
	directoryEntriesStart = 5
	directoryEntrySize    = 26
	maxNameLength         = 10
	maxTitleLength        = 19
)

// readDirectory decodes the directory at `address` and everything below it.
// Broken directories come back empty and are recorded as problems.
func (d *decoder) readDirectory(address uint32, name string) *DirectoryEntry {
	directory := &DirectoryEntry{
		Name:        name,
		Attributes:  AttrDirectory,
		DiscAddress: address,
	}

	if d.visited[address] {
		d.problem("directory %q at %#x appears more than once in the tree", name, address)
		return directory
	}
	d.visited[address] = true

	layout := d.layout
	raw, err := d.objects.readObject(address, layout.size)
	if err != nil {
		d.fail(err)
	}
	if len(raw) < layout.size {
		d.problem("directory %q at %#x is truncated", name, address)
		return directory
	}
	if !hasSignature(raw, 1) {
		d.problem("directory %q at %#x has no signature", name, address)
		return directory
	}

	endSignature := raw[layout.endSignatureOffset : layout.endSignatureOffset+4]
	if string(endSignature) != string(raw[1:5]) {
		d.problem(
			"directory %q at %#x: end signature %q doesn't match %q",
			name,
			address,
			endSignature,
			raw[1:5])
	}
	if raw[0] != raw[layout.endSequenceOffset] {
		d.problem(
			"directory %q at %#x: broken sequence numbers %d and %d",
			name,
			address,
			raw[0],
			raw[layout.endSequenceOffset])
	}

	directory.Title = readName(raw, layout.titleOffset, maxTitleLength, layout.attributesInName)

	for i := 0; i < layout.maxEntries; i++ {
		offset := directoryEntriesStart + i*directoryEntrySize
		if raw[offset] == 0 {
			break
		}
		entry := d.readEntry(raw[offset : offset+directoryEntrySize])
		directory.Children = append(directory.Children, entry)
	}
	return directory
}

func (d *decoder) readEntry(raw []byte) Entry {
	name := readName(raw, 0, maxNameLength, d.layout.attributesInName)
	loadAddress := ReadUint(raw, 10, 4)
	execAddress := ReadUint(raw, 14, 4)
	length := ReadUint(raw, 18, 4)
	address := ReadUint(raw, 22, 3)

	var attributes Attributes
	if d.layout.attributesInName {
		attributes = oldAttributes(raw)
	} else {
		attributes = Attributes(raw[25]) & (AttrOwnerRead |
			AttrOwnerWrite |
			AttrLocked |
			AttrDirectory |
			AttrPublicRead |
			AttrPublicWrite)
	}

	if attributes.IsDirectory() {
		directory := d.readDirectory(address, name)
		directory.LoadAddress = loadAddress
		directory.ExecAddress = execAddress
		directory.Attributes = attributes
		return directory
	}

	data, err := d.objects.readObject(address, int(length))
	if err != nil {
		d.fail(err)
	}
	if data == nil {
		data = []byte{}
	}

	return &FileEntry{
		Name:        name,
		Data:        data,
		LoadAddress: loadAddress,
		ExecAddress: execAddress,
		Length:      length,
		Attributes:  attributes,
		DiscAddress: address,
	}
}

// Old directories order the attribute bits R, W, L, D, E, r, w across the
// first seven characters of the name.
var oldAttributeOrder = [...]Attributes{
	AttrOwnerRead,
	AttrOwnerWrite,
	AttrLocked,
	AttrDirectory,
	AttrExecuteOnly,
	AttrPublicRead,
	AttrPublicWrite,
}

func oldAttributes(raw []byte) Attributes {
	var attributes Attributes
	for i, bit := range oldAttributeOrder {
		if raw[i]&0x80 != 0 {
			attributes |= bit
		}
	}
	return attributes
}
