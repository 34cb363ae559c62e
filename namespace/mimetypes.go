package namespace

// mimeTypes maps common RISC OS filetypes to MIME types.
var mimeTypes = map[uint16]string{
	0x132: "image/x-icon",
	0x695: "image/gif",
	0xA91: "application/zip",
	0xADF: "application/pdf",
	0xAE4: "application/java-archive",
	0xB60: "image/png",
	0xC85: "image/jpeg",
	0xDDC: "application/x-spark",
	0xDEA: "image/vnd.dxf",
	0xF78: "application/x-java",
	0xF79: "text/css",
	0xF81: "text/javascript",
	0xF89: "application/gzip",
	0xFAE: "application/x-acorn-resource",
	0xFAF: "text/html",
	0xFCA: "application/x-squash",
	0xFEB: "text/x-obey",
	0xFF6: "application/x-font",
	0xFF8: "application/x-acorn-absolute",
	0xFF9: "image/x-acorn-sprite",
	0xFFA: "application/x-acorn-module",
	0xFFB: "application/x-acorn-basic",
	0xFFD: "application/octet-stream",
	0xFFF: "text/plain",
}

// MIMETypeFor returns the MIME type for a RISC OS filetype, or "" if it isn't
// known.
func MIMETypeFor(fileType uint16) string {
	return mimeTypes[fileType]
}
