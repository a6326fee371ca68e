package imgtype

// ProgressEvent represents a progress update during archive creation or
// extraction.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Name is the entry currently being processed, if applicable.
	Name string

	// BytesDone is the number of uncompressed bytes processed so far.
	BytesDone uint64

	// FilesDone is the number of entries completed.
	FilesDone int

	// FilesTotal is the total number of entries.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for archive creation and extraction.
const (
	// StageEnumerating indicates source files are being selected.
	StageEnumerating ProgressStage = iota

	// StageCompressing indicates entry bodies are being compressed and written.
	StageCompressing

	// StageWritingTable indicates the file table and header are being written.
	StageWritingTable

	// StageExtracting indicates entries are being extracted.
	StageExtracting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StageCompressing:
		return "compressing"
	case StageWritingTable:
		return "writing table"
	case StageExtracting:
		return "extracting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
type ProgressFunc func(ProgressEvent)
