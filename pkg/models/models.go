package models

import "time"

// Participant represents a person taking part in a gift exchange
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// DisplayName returns the participant's name, falling back to the email
// address and finally the id when no name was given.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return p.ID
}

// Assignment represents a giver-receiver pairing within a group
type Assignment struct {
	GiverID    string `json:"giver_id"`
	ReceiverID string `json:"receiver_id"`
}

// Group represents a gift-exchange group together with its current
// participant list and assignment set
type Group struct {
	ID             string        `json:"id"`
	Code           string        `json:"code"`
	Name           string        `json:"name"`
	OrganizerName  string        `json:"organizer_name,omitempty"`
	OrganizerEmail string        `json:"organizer_email,omitempty"`
	Participants   []Participant `json:"participants"`
	Assignments    []Assignment  `json:"assignments"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ParticipantByID returns the participant with the given id, if present.
func (g *Group) ParticipantByID(id string) (Participant, bool) {
	for _, p := range g.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// ReceiverFor returns the participant assigned to receive a gift from the
// given giver, if an assignment exists.
func (g *Group) ReceiverFor(giverID string) (Participant, bool) {
	for _, a := range g.Assignments {
		if a.GiverID == giverID {
			return g.ParticipantByID(a.ReceiverID)
		}
	}
	return Participant{}, false
}

// ParticipantInput is a participant as submitted by the organizer
type ParticipantInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateGroupInput is the payload for creating a new group
type CreateGroupInput struct {
	Name           string             `json:"name" binding:"required"`
	OrganizerName  string             `json:"organizer_name"`
	OrganizerEmail string             `json:"organizer_email"`
	Participants   []ParticipantInput `json:"participants" binding:"required"`
}

// UpdateGroupInput is the payload for editing group metadata
type UpdateGroupInput struct {
	Name           string `json:"name"`
	OrganizerName  string `json:"organizer_name"`
	OrganizerEmail string `json:"organizer_email"`
}

// ReplaceParticipantsInput is the payload for replacing a group's
// participant list
type ReplaceParticipantsInput struct {
	Participants []ParticipantInput `json:"participants" binding:"required"`
}

// ParticipantLink pairs a participant with their private reveal URL
type ParticipantLink struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GroupResponse is returned from operations that issue participant links
type GroupResponse struct {
	ID             string            `json:"id"`
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	OrganizerToken string            `json:"organizer_token,omitempty"`
	Links          []ParticipantLink `json:"links"`
}
