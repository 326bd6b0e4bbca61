package types

// Document is a resume held in memory, ready to be uploaded.
type Document struct {
	Name        string // file name sent in the multipart part
	ContentType string
	Data        []byte
	Pages       int    // 0 when the page tree could not be read
	Source      string // local path or s3:// URI it was loaded from
}

// Size returns the document size in bytes.
func (d *Document) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Data)
}
