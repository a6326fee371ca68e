package imgtype

const (
	// ArchiveExt is the file extension of image archives.
	ArchiveExt = ".ima"

	// ImageExt is the file extension of loose images and extracted entries.
	ImageExt = ".jpg"
)
