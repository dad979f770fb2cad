package model

import "encoding/json"

// ParticipantType is the discriminant written into every Participant document.
const ParticipantType = "Participant"

// Role defines the capability level of a participant.
type Role string

const (
	RoleUnassigned       Role = "UNASSIGNED"        // Registered but not yet allowed to act
	RoleCustomer         Role = "CUSTOMER"          // Buys energy
	RoleDistributor      Role = "DISTRIBUTOR"       // Brokers trades between participants
	RoleProducer         Role = "PRODUCER"          // Mints energy assets
	RoleProducerCustomer Role = "PRODUCER_CUSTOMER" // Prosumer: mints and buys
)

// Roles lists every valid role in declaration order.
var Roles = []Role{RoleUnassigned, RoleCustomer, RoleDistributor, RoleProducer, RoleProducerCustomer}

// IsValid reports whether r is one of the enumerated roles.
func (r Role) IsValid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// CanProduce reports whether a participant holding r may create energy assets.
func (r Role) CanProduce() bool {
	return r == RoleProducer || r == RoleProducerCustomer
}

// Participant stores information about registered participants in the system.
type Participant struct {
	Type string `json:"type"` // Always ParticipantType
	ID   string `json:"id"`   // Participant id, also the "id" attribute of its credential
	Name string `json:"name"` // Display name
	Role Role   `json:"role"` // Assigned role
}

// NewParticipant builds a Participant record.
func NewParticipant(id, name string, role Role) *Participant {
	return &Participant{Type: ParticipantType, ID: id, Name: name, Role: role}
}

// ParticipantSummary is the projection returned when listing participants.
type ParticipantSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// RoleCount is one row of the per-role participant tally.
type RoleCount struct {
	Role  Role `json:"role"`
	Count int  `json:"count"`
}

// CallerIdentity describes the claims carried by the invoking credential.
type CallerIdentity struct {
	FullID        string `json:"fullId"`        // X.509 identity string from the client identity
	ParticipantID string `json:"participantId"` // "id" attribute, empty when absent
	Role          string `json:"role"`          // "role" attribute, empty when absent
	IsAdmin       bool   `json:"isAdmin"`
}

// MarshalParticipant serializes p for world state.
func MarshalParticipant(p *Participant) ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalParticipant restores a Participant previously written by MarshalParticipant.
func UnmarshalParticipant(data []byte) (*Participant, error) {
	var p Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
