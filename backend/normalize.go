package backend

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/ridebook/go-ride-client/users"
)

// envelope is the generic wrapper some backend deployments put around
// response payloads.
type envelope struct {
	ResponseMessage string          `json:"responseMessage,omitempty"`
	ResponseData    json.RawMessage `json:"responseData,omitempty"`
	ResponseCode    int             `json:"responseCode,omitempty"`
}

// userAliases tolerates the three id spellings seen in the wild.
type userAliases struct {
	users.User
	ID      string `json:"id,omitempty"`
	SnakeID string `json:"user_id,omitempty"`
}

// NormalizeUserResponse interprets a user lookup body that may be the record
// itself, a list of records, or either nested under a generic envelope field,
// and returns the tagged Found / NotFound / Malformed result.
func NormalizeUserResponse(raw json.RawMessage) users.Lookup {
	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return users.Lookup{Status: users.LookupNotFound}
	}

	// Unwrap the envelope when present.
	var env envelope
	if err := json.Unmarshal(payload, &env); err == nil && len(env.ResponseData) > 0 {
		payload = bytes.TrimSpace(env.ResponseData)
	}

	if bytes.HasPrefix(payload, []byte("[")) {
		var list []json.RawMessage
		if err := json.Unmarshal(payload, &list); err != nil {
			return users.Lookup{Status: users.LookupMalformed}
		}
		if len(list) == 0 {
			return users.Lookup{Status: users.LookupNotFound}
		}
		payload = list[0]
	}

	var aliased userAliases
	if err := json.Unmarshal(payload, &aliased); err != nil {
		return users.Lookup{Status: users.LookupMalformed}
	}

	user := aliased.User
	if user.UserID == "" {
		if aliased.ID != "" {
			user.UserID = aliased.ID
		} else if aliased.SnakeID != "" {
			user.UserID = aliased.SnakeID
		}
	}
	if user.UserID == "" && user.Phone == "" {
		// Decoded but carries neither key field: not a user record.
		return users.Lookup{Status: users.LookupMalformed}
	}
	return users.Lookup{Status: users.LookupFound, User: &user}
}
