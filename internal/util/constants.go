package util

const MaxPageSize = 100

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeCSV         = "text/csv"
	MimeOctetStream = "application/octet-stream"
)

var AllowedImportExtensions = []string{".xlsx", ".csv"}
