package util

const (
	// ISO-8601 with millisecond precision, the timestamp format of the store.
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"
	DateFormat      = "2006-01-02"
)

const (
	ArchiveNone  = "none"
	ArchiveLocal = "local"
	ArchiveMinio = "minio"
	ArchiveOSS   = "oss"
)

const (
	MimeCSV  = "text/csv"
	MimeJSON = "application/json"
)
