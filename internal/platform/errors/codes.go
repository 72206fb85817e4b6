// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Registry errors
	CodeRegistryEmptyKey       Code = "REGISTRY_EMPTY_KEY"
	CodeRegistryNilSystem      Code = "REGISTRY_NIL_SYSTEM"
	CodeRegistryInvalidVersion Code = "REGISTRY_INVALID_VERSION"

	// Envelope errors
	CodeEnvelopeEncode         Code = "ENVELOPE_ENCODE"
	CodeEnvelopeDecode         Code = "ENVELOPE_DECODE"
	CodeEnvelopeMissingVersion Code = "ENVELOPE_MISSING_VERSION"

	// Value errors
	CodeValueUnsupported  Code = "VALUE_UNSUPPORTED"
	CodeValueNonStringKey Code = "VALUE_NON_STRING_MAP_KEY"

	// Save/load errors
	CodeSaveStorage     Code = "SAVE_STORAGE"
	CodeLoadStorage     Code = "LOAD_STORAGE"
	CodeLoadDecode      Code = "LOAD_DECODE"
	CodeLoadSnapshot    Code = "LOAD_SNAPSHOT"
	CodeLoadDeserialize Code = "LOAD_DESERIALIZE"
	CodeLoadScene       Code = "LOAD_SCENE"
	CodeLoadCorrupted   Code = "LOAD_ROLLBACK_CORRUPTED"

	// Migration errors
	CodeMigrationScript Code = "MIGRATION_SCRIPT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)
