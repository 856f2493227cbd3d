package constants

// Centralized constants for env keys, wire format and the record store API.
const (
	// Environment variable keys
	EnvConfigPath = "LEGENDS_CONFIG"
	EnvDBPath     = "LEGENDS_DB"
	EnvAPIBase    = "LEGENDS_API_BASE"

	// HTTP headers and content types
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"

	ContentTypeJSON = "application/json"
)

// Record store tables. The remote API exposes each spreadsheet table as
// a path segment under the base URL.
const (
	TableUsers   = "users"
	TableCards   = "cards"
	TableBattles = "battles"
)

// Routes served by the bundled record store.
const (
	RouteAPIPrefix = "/api"
	RouteTable     = "/:table"
)

// Spreadsheet wire format. Booleans travel as "TRUE"/"FALSE" strings and
// id lists as comma-joined values, matching the hosted sheet backend.
const (
	WireTrue  = "TRUE"
	WireFalse = "FALSE"

	WireListSeparator = ","
)

// Rarity tier wire values as stored in the cards table.
const (
	WireTierEnhanced = "MTM"
	WireTierMaxed    = "MAX"
)

// WinnerDraw marks a drawn battle in the winner column.
const WinnerDraw = "Draw"

// Common JSON response keys
const (
	JSONKeyData    = "data"
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
)

// Common error messages used by the record store handlers
const (
	ErrUnknownTable    = "Unknown table"
	ErrInvalidPayload  = "Invalid request payload"
	ErrMissingRecordID = "Record id is required"
	ErrRecordNotFound  = "Record not found"
	ErrRevisionStale   = "Record revision is stale"
	ErrFailedList      = "Failed to list records"
	ErrFailedCreate    = "Failed to create records"
	ErrFailedPatch     = "Failed to patch records"
)

// Log levels emitted by the logging package
const (
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)

// Logging field names
const (
	LogFieldBattleID = "battle_id"
	LogFieldUserID   = "user_id"
	LogFieldTable    = "table"
	LogFieldTurn     = "turn"
	LogFieldWinner   = "winner"
	LogFieldAddr     = "addr"
	LogFieldRevision = "revision"
)
