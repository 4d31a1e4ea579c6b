package clerk

import "encoding/json"

type ClerkWebhookEvent struct {
	Data   json.RawMessage `json:"data"`
	Object string          `json:"object"`
	Type   string          `json:"type"`
}

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
	Verification struct {
		Status string `json:"status"`
	} `json:"verification"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	Username              string              `json:"username"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	ProfileImageURL       string              `json:"profile_image_url"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	Deleted               bool                `json:"deleted"`
}

// PrimaryEmail returns the primary address, falling back to the first one.
func (d *ClerkUserData) PrimaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

// DisplayName prefers first/last name, then username.
func (d *ClerkUserData) DisplayName() string {
	name := d.FirstName
	if d.LastName != "" {
		if name != "" {
			name += " "
		}
		name += d.LastName
	}
	if name == "" {
		name = d.Username
	}
	return name
}

func (d *ClerkUserData) Avatar() string {
	if d.ImageURL != "" {
		return d.ImageURL
	}
	return d.ProfileImageURL
}
