package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	LookupError     = 4
	ExportError     = 5
	PartialSuccess  = 6
)
