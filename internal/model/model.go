// Package model defines the canonical client-side entities mirrored from the
// notification platform. Raw server payloads are converted into these shapes
// by the normalize package; nothing outside that boundary sees loose JSON.
package model

import (
	"fmt"
	"time"
)

// Messaging channels supported by the platform.
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// StatusActive marks a membership that is currently usable.
const StatusActive = "active"

// User is the identity decoded from the login JWT payload.
type User struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	ClientID string `json:"client_id"`
}

// Variable is a single WhatsApp template parameter.
type Variable struct {
	Name     string `json:"name"`
	Type     string `json:"type"`     // text | number
	Position int    `json:"position"` // 1-based slot within the template
}

// PurposeMeta is the optional purpose metadata. On the wire it arrives either
// as a JSON object or as a JSON-encoded string (double-encoded).
type PurposeMeta struct {
	Medium       string     `json:"medium"` // sms | whatsapp
	Language     string     `json:"language,omitempty"`
	TemplateType string     `json:"template_type,omitempty"`
	Variables    []Variable `json:"variables,omitempty"`
}

// Purpose is a reusable message template/intent under a project.
type Purpose struct {
	ID          string       `json:"ID"`
	Name        string       `json:"Name"`
	Description string       `json:"Description"`
	IsActive    bool         `json:"IsActive"`
	CreatedAt   time.Time    `json:"CreatedAt"`
	Meta        *PurposeMeta `json:"MetaData,omitempty"`
}

// Project is a named API credential scope under a client.
type Project struct {
	ID        string         `json:"ID"`
	ClientID  string         `json:"ClientID"`
	Name      string         `json:"Name"`
	APIKey    *string        `json:"APIKey"` // normalized to a plain nullable string
	SenderID  string         `json:"SenderId"`
	MetaData  map[string]any `json:"MetaData,omitempty"` // free-form channel config
	IsActive  bool           `json:"IsActive"`
	CreatedAt time.Time      `json:"CreatedAt"`
	UpdatedAt time.Time      `json:"UpdatedAt"`
	Purposes  []Purpose      `json:"purposes"` // invariant: never nil
}

// Client is the authenticated organization, fetched once per session and
// replaced wholesale on refetch.
type Client struct {
	ID          string    `json:"ID"`
	Name        string    `json:"Name"`
	Description string    `json:"Description"`
	Projects    []Project `json:"Projects"`
	APIKeys     any       `json:"APIKeys,omitempty"` // opaque passthrough, shape not relied on
	IsActive    bool      `json:"IsActive"`
	CreatedAt   time.Time `json:"CreatedAt"`
	UpdatedAt   time.Time `json:"UpdatedAt"`
}

// Plan is a purchasable quota offering for one channel.
type Plan struct {
	ID          string    `json:"ID"`
	Name        string    `json:"Name"`
	Description string    `json:"Description"`
	Channel     string    `json:"Channel"`
	Quota       int       `json:"Quota"` // message allowance
	Price       float64   `json:"Price"`
	Duration    int       `json:"Duration"` // days
	IsActive    bool      `json:"IsActive"`
	CreatedAt   time.Time `json:"CreatedAt"`
	UpdatedAt   time.Time `json:"UpdatedAt"`
}

// Membership is a client's subscription instance of a plan. Quota usage and
// expiry metrics are derived, not stored (see the quota package).
type Membership struct {
	ID         string    `json:"ID"`
	ClientID   string    `json:"ClientID"`
	PlanID     string    `json:"PlanID"`
	QuotaUsed  int       `json:"QuotaUsed"`
	QuotaTotal int       `json:"QuotaTotal"`
	ValidTill  time.Time `json:"ValidTill"`
	Status     string    `json:"Status"`
	CreatedAt  time.Time `json:"CreatedAt"`
	UpdatedAt  time.Time `json:"UpdatedAt"`
	Plan       Plan      `json:"Plan"`
}

// ValidateVariables checks a purpose's template variable set: every variable
// needs a non-empty name, a known type, and a unique positive position.
func ValidateVariables(vars []Variable) error {
	seen := make(map[int]string, len(vars))
	for i, v := range vars {
		if v.Name == "" {
			return fmt.Errorf("variable %d: empty name", i+1)
		}
		if v.Type != "text" && v.Type != "number" {
			return fmt.Errorf("variable %q: unknown type %q", v.Name, v.Type)
		}
		if v.Position < 1 {
			return fmt.Errorf("variable %q: position must be positive", v.Name)
		}
		if prev, dup := seen[v.Position]; dup {
			return fmt.Errorf("variables %q and %q share position %d", prev, v.Name, v.Position)
		}
		seen[v.Position] = v.Name
	}
	return nil
}
