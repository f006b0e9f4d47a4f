package pipeline

// Status lines reported while loading, previewing and saving. Failure
// lines are followed by ": " and the error.
const (
	StatusReading        = "Reading input file"
	StatusReadFailed     = "Failed to read file"
	StatusDecompressing  = "Decompressing data"
	StatusDecompressFail = "Failed to decompress data"
	StatusParsing        = "Parsing session data"
	StatusParseFailed    = "Failed to parse session data"
	StatusListFailed     = "Failed to list windows in session"
	StatusPreviewing     = "Generating preview"
	StatusPreviewFailed  = "Failed to generate preview"
	StatusLoaded         = "Successfully loaded session data"
	StatusSaving         = "Saving links to file"
	StatusSaveFailed     = "Failed to save links to file"
	StatusSaved          = "Successfully saved links to a file"
)

func failure(status string, err error) string {
	return status + ": " + err.Error()
}
