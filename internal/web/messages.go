package web

// messages.go maps technical errors to user-facing messages.
//
// Handlers never leak raw error strings to clients: every error is matched
// against the pattern table below and rendered as a short message, a
// suggested action, and a stable code for support reference. Technical
// detail stays in the server log, correlated by request id.

import (
	"strings"

	"github.com/JonMunkholm/RadioRCA/internal/apperr"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Patterns are matched with strings.Contains and the first match
// wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// Request validation (REQ001-REQ004)
	{
		pattern: "latitude",
		msg: UserMessage{
			Message: "The latitude is out of range",
			Action:  "Provide a latitude between -90 and 90",
			Code:    "REQ001",
		},
	},
	{
		pattern: "longitude",
		msg: UserMessage{
			Message: "The longitude is out of range",
			Action:  "Provide a longitude between -180 and 180",
			Code:    "REQ002",
		},
	},
	{
		pattern: "sitelimit",
		msg: UserMessage{
			Message: "The site limit is invalid",
			Action:  "Request at least one site",
			Code:    "REQ003",
		},
	},
	{
		pattern: "site_limit",
		msg: UserMessage{
			Message: "The site limit is invalid",
			Action:  "Request at least one site",
			Code:    "REQ003",
		},
	},
	{
		pattern: "unknown category",
		msg: UserMessage{
			Message: "Unknown dataset category",
			Action:  "Use one of: pm, cm, database, rf",
			Code:    "REQ004",
		},
	},

	// Archive contents (ARC001-ARC003)
	{
		pattern: "no design table",
		msg: UserMessage{
			Message: "No design table has been ingested yet",
			Action:  "Upload a site design table first",
			Code:    "ARC001",
		},
	},
	{
		pattern: "dump in archive",
		msg: UserMessage{
			Message: "No configuration dump matches this lookup",
			Action:  "Upload the matching configuration export first",
			Code:    "ARC002",
		},
	},
	{
		pattern: "no usable rows",
		msg: UserMessage{
			Message: "The latest table contains no usable rows",
			Action:  "Re-ingest the source file or upload a newer export",
			Code:    "ARC003",
		},
	},

	// Table schema (SCH001-SCH002)
	{
		pattern: "no column matches role",
		msg: UserMessage{
			Message: "The file is missing a required column",
			Action:  "Check that the export carries the columns this category needs",
			Code:    "SCH001",
		},
	},
	{
		pattern: "column",
		msg: UserMessage{
			Message: "The table schema does not support this operation",
			Action:  "Upload an export that carries the needed columns",
			Code:    "SCH002",
		},
	},

	// Ingest mechanics (ING001-ING003)
	{
		pattern: "too many concurrent ingests",
		msg: UserMessage{
			Message: "The server is busy processing other uploads",
			Action:  "Wait a moment and retry",
			Code:    "ING001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The uploaded file is too large",
			Action:  "Split the export or raise the ingest size limit",
			Code:    "ING002",
		},
	},
	{
		pattern: "multipart",
		msg: UserMessage{
			Message: "The upload is not a valid multipart form",
			Action:  "Send the file in a multipart form field named \"file\"",
			Code:    "ING003",
		},
	},

	// Timeouts
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "ING004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The operation was cancelled",
			Action:  "Retry the request",
			Code:    "ING005",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again; contact support if the problem persists",
	Code:    "ERR000",
}

// kindMessages provides a coarse fallback per error kind when no string
// pattern matches, so typed errors still read sensibly.
var kindMessages = map[apperr.Kind]UserMessage{
	apperr.KindValidation: {
		Message: "The request is invalid",
		Action:  "Check the request parameters",
		Code:    "REQ000",
	},
	apperr.KindDataUnavailable: {
		Message: "The data needed for this operation is not in the archive",
		Action:  "Ingest the matching export first",
		Code:    "ARC000",
	},
	apperr.KindSchemaMismatch: {
		Message: "The archived table does not support this operation",
		Action:  "Upload an export with the required columns",
		Code:    "SCH000",
	},
}

// MapError converts a technical error into a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if msg, ok := kindMessages[apperr.KindOf(err)]; ok {
		return msg
	}
	return defaultMessage
}
