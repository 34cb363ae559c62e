package adfs

// Attributes are the access bits of a file or directory, normalized to the
// layout of the new directory format's attribute byte.
type Attributes uint8

const (
	AttrOwnerRead Attributes = 1 << iota
	AttrOwnerWrite
	AttrLocked
	AttrDirectory
	AttrPublicRead
	AttrPublicWrite
	AttrExecuteOnly
)

// IsDirectory returns true if the directory bit is set.
func (a Attributes) IsDirectory() bool {
	return a&AttrDirectory != 0
}

// String renders the attributes the way *INFO displays them, e.g. "WR/r".
func (a Attributes) String() string {
	owner := ""
	if a&AttrDirectory != 0 {
		owner += "D"
	}
	if a&AttrLocked != 0 {
		owner += "L"
	}
	if a&AttrExecuteOnly != 0 {
		owner += "E"
	}
	if a&AttrOwnerWrite != 0 {
		owner += "W"
	}
	if a&AttrOwnerRead != 0 {
		owner += "R"
	}

	public := ""
	if a&AttrPublicWrite != 0 {
		public += "w"
	}
	if a&AttrPublicRead != 0 {
		public += "r"
	}
	return owner + "/" + public
}

// Entry is a single record in a directory: either a *[FileEntry] or a
// *[DirectoryEntry]. No other implementations exist.
type Entry interface {
	// RawName is the name exactly as stored on the disc, which may contain
	// characters that aren't legal in a host path.
	RawName() string
	entry()
}

// FileEntry is a file record along with its complete contents.
type FileEntry struct {
	Name        string
	Data        []byte
	LoadAddress uint32
	ExecAddress uint32
	// Length is the length recorded in the directory. It's normally the same
	// as len(Data) unless the image is truncated.
	Length      uint32
	Attributes  Attributes
	DiscAddress uint32
}

func (f *FileEntry) RawName() string {
	return f.Name
}

func (*FileEntry) entry() {}

// HasFileType returns true if the load address holds a filetype and date
// stamp instead of a real load address.
func (f *FileEntry) HasFileType() bool {
	return f.LoadAddress&0xFFF00000 == 0xFFF00000
}

// FileType returns the 12-bit filetype stored in the load address. It's only
// meaningful if [FileEntry.HasFileType] returns true.
func (f *FileEntry) FileType() uint16 {
	return uint16((f.LoadAddress >> 8) & 0xFFF)
}

// DirectoryEntry is a directory record along with its decoded children, in the
// order they're stored on the disc.
type DirectoryEntry struct {
	Name        string
	Title       string
	Children    []Entry
	LoadAddress uint32
	ExecAddress uint32
	Attributes  Attributes
	DiscAddress uint32
}

func (d *DirectoryEntry) RawName() string {
	return d.Name
}

func (*DirectoryEntry) entry() {}
