// Package constants provides shared constants used throughout the ordsync codebase.
// This includes timeouts, file permissions, endpoint defaults, and the fixed
// values written into every generated manifest.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the ORD API
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 60 * time.Minute

	// ShutdownTimeout is how long shutdown handlers may run after an error
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// DefaultWorkers resolves records strictly one at a time
	DefaultWorkers = 1

	// MaxWorkers caps the record resolution pool
	MaxWorkers = 32

	// DefaultRateBurst is the token bucket burst size when a rate limit is set
	DefaultRateBurst = 1

	// WriteBufferSize is the buffer size for the output document writer
	WriteBufferSize = 64 * 1024

	// MaxResponseSize bounds a single API response body (64 MB)
	MaxResponseSize = 64 * 1024 * 1024
)

// API constants describe the ORD endpoints
const (
	// DefaultSyncURI is the live ORD sync endpoint
	DefaultSyncURI = "https://directory.spineservices.nhs.uk/ORD/2-0-0/sync"

	// SyncSegment marks where the sync URI is cut to derive the API base
	SyncSegment = "sync"

	// TotalCountHeader carries the number of records in a sync response
	TotalCountHeader = "X-Total-Count"

	// FormatParam and FormatXML select XML payloads on every endpoint
	FormatParam = "_format"
	FormatXML   = "xml"

	// CursorParam is the sync query parameter holding the cursor date
	CursorParam = "LastChangeDate"

	// DefaultUserAgent identifies ordsync to the API
	DefaultUserAgent = "ordsync/dev"
)

// Manifest constants are the fixed fields the built-in manifest template
// carries. Custom templates are expected to keep them.
const (
	// SchemaNamespace is the ORD v2-0-0 root namespace
	SchemaNamespace = "http://refdata.hscic.gov.uk/org/v2-0-0"

	// SchemaVersion is the value of Manifest/Version
	SchemaVersion = "2-0-0"

	// PublicationType is the value of Manifest/PublicationType
	PublicationType = "APISync"

	// PublicationSource is the value of Manifest/PublicationSource
	PublicationSource = "HSCIC"

	// PublicationSeqNum is the value of Manifest/PublicationSeqNum
	PublicationSeqNum = "0"

	// ContentDescriptionPrefix precedes the publication date in ContentDescription
	ContentDescriptionPrefix = "HSCOrgRefData_APICall_"
)

// Path and naming constants
const (
	// DefaultOutputDir is where output documents are written
	DefaultOutputDir = "."

	// DefaultLogFile is the append-only audit log
	DefaultLogFile = "APILogFile.log"

	// OutputFilePrefix and OutputFileExt frame generated document names
	OutputFilePrefix = "APISyncFile_"
	OutputFileExt    = ".xml"

	// DefaultConfigName is the config file name searched in $HOME and "."
	DefaultConfigName = ".ordsync"

	// EnvPrefix prefixes every environment variable read through viper
	EnvPrefix = "ORDSYNC"
)

// Format constants
const (
	// TimeFormatDate is the ISO date written to PublicationDate
	TimeFormatDate = "2006-01-02"

	// TimeFormatDateTime is the schema datetime written to FileCreationDateTime
	TimeFormatDateTime = "2006-01-02T15:04:05"

	// TimeFormatFilename is used in generated filenames (no colons)
	TimeFormatFilename = "2006-01-02T150405"

	// TimeFormatLog is the timestamp format of audit log lines
	TimeFormatLog = time.RFC3339
)

// ProgressThresholds are the percentages reported while records are written.
var ProgressThresholds = []int{10, 25, 40, 50, 65, 80, 95, 100}

// Messages
const (
	// MsgEndpointHint is printed after transport failures
	MsgEndpointHint = "only calls to the sync endpoint are supported with LastChangeDate no older than 190 days and the data is only returned as xml"
)
