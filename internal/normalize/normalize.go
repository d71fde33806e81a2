// Package normalize is the single boundary where loose server payloads become
// canonical model entities. The platform's client/project records vary in
// field casing and nesting (purposes vs Purposes, API key as object vs plain
// string, purpose metadata double-encoded as a string); everything past this
// package sees one strict shape.
package normalize

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shauryatech/notifyctl/internal/model"
)

// RawPurpose is a purpose record as returned by the platform. MetaData may be
// a JSON object, a JSON-encoded string, or absent.
type RawPurpose struct {
	ID          string          `json:"ID"`
	Name        string          `json:"Name"`
	Description string          `json:"Description"`
	IsActive    bool            `json:"IsActive"`
	CreatedAt   time.Time       `json:"CreatedAt"`
	MetaData    json.RawMessage `json:"MetaData"`
}

// RawProject is a project record as returned by the platform. Both purpose
// field casings are captured separately; encoding/json routes each JSON key
// to its exact-match field.
type RawProject struct {
	ID            string          `json:"ID"`
	ClientID      string          `json:"ClientID"`
	Name          string          `json:"Name"`
	APIKey        json.RawMessage `json:"APIKey"`
	SenderID      string          `json:"SenderId"`
	MetaData      map[string]any  `json:"MetaData"`
	IsActive      *bool           `json:"IsActive"`
	CreatedAt     time.Time       `json:"CreatedAt"`
	UpdatedAt     *time.Time      `json:"UpdatedAt"`
	PurposesLower []RawPurpose    `json:"purposes"`
	PurposesUpper []RawPurpose    `json:"Purposes"`
}

// RawClient is a client record as returned by the fetch-client and
// create-client endpoints.
type RawClient struct {
	ID          string       `json:"ID"`
	Name        string       `json:"Name"`
	Description string       `json:"Description"`
	Projects    []RawProject `json:"Projects"`
	APIKeys     any          `json:"APIKeys"`
	IsActive    bool         `json:"IsActive"`
	CreatedAt   time.Time    `json:"CreatedAt"`
	UpdatedAt   time.Time    `json:"UpdatedAt"`
}

// Client converts a raw client record into its canonical form. An absent
// Projects field yields an empty slice, never nil. Pure: the input is not
// mutated and no I/O happens here.
func Client(raw RawClient) model.Client {
	projects := make([]model.Project, 0, len(raw.Projects))
	for _, rp := range raw.Projects {
		projects = append(projects, Project(rp))
	}
	return model.Client{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Projects:    projects,
		APIKeys:     raw.APIKeys,
		IsActive:    raw.IsActive,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
}

// Project normalizes one raw project record: IsActive defaults to true,
// UpdatedAt falls back to CreatedAt, the API key collapses to a plain
// nullable string, and purposes are always a non-nil slice (lowercase wire
// field preferred when both casings are present).
func Project(raw RawProject) model.Project {
	active := true
	if raw.IsActive != nil {
		active = *raw.IsActive
	}
	updated := raw.CreatedAt
	if raw.UpdatedAt != nil {
		updated = *raw.UpdatedAt
	}

	rawPurposes := raw.PurposesLower
	if rawPurposes == nil {
		rawPurposes = raw.PurposesUpper
	}
	purposes := make([]model.Purpose, 0, len(rawPurposes))
	for _, rp := range rawPurposes {
		purposes = append(purposes, Purpose(rp))
	}

	return model.Project{
		ID:        raw.ID,
		ClientID:  raw.ClientID,
		Name:      raw.Name,
		APIKey:    APIKey(raw.APIKey),
		SenderID:  raw.SenderID,
		MetaData:  raw.MetaData,
		IsActive:  active,
		CreatedAt: raw.CreatedAt,
		UpdatedAt: updated,
		Purposes:  purposes,
	}
}

// Purpose normalizes one raw purpose record, decoding its metadata when
// present.
func Purpose(raw RawPurpose) model.Purpose {
	p := model.Purpose{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		IsActive:    raw.IsActive,
		CreatedAt:   raw.CreatedAt,
	}
	if hasValue(raw.MetaData) {
		meta := PurposeMeta(raw.MetaData)
		p.Meta = &meta
	}
	return p
}

// APIKey collapses the two documented wire shapes to a plain nullable string:
// {"Key": "abc"} and "abc" both become "abc", null/absent becomes nil.
// Anything else is out of contract and treated as absent.
func APIKey(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if !hasValue(raw) {
		return nil
	}
	switch raw[0] {
	case '{':
		var obj struct {
			Key *string `json:"Key"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		return obj.Key
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return &s
	}
	return nil
}

// PurposeMeta decodes purpose metadata that arrives either as a JSON object
// or double-encoded as a JSON string. Undecodable input falls back to the SMS
// default rather than failing: a purpose with broken metadata is still a
// usable SMS purpose.
func PurposeMeta(raw json.RawMessage) model.PurposeMeta {
	fallback := model.PurposeMeta{Medium: model.ChannelSMS}

	raw = bytes.TrimSpace(raw)
	if !hasValue(raw) {
		return fallback
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return fallback
		}
		raw = []byte(inner)
	}

	var meta model.PurposeMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fallback
	}
	if meta.Medium == "" {
		meta.Medium = model.ChannelSMS
	}
	return meta
}

func hasValue(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
