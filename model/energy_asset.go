package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EnergyAssetType is the discriminant written into every asset document.
const EnergyAssetType = "EnergyTrading"

// TradeCompletedEvent is the chaincode event name emitted after a successful trade.
const TradeCompletedEvent = "TradeCompleted"

// TradeRecord is one entry of an asset's transaction history. The same record is
// appended to both the selling and the buying asset.
type TradeRecord struct {
	BuyerID        string   `json:"buyerId"`
	SellerID       string   `json:"sellerId"`
	Units          float64  `json:"units"`
	Timestamp      string   `json:"timestamp"`      // RFC 3339, taken from the transaction timestamp
	TargetAudience []string `json:"targetAudience"` // [buyerId, sellerId]
}

// EnergyAsset is a quantity of energy owned by one participant.
type EnergyAsset struct {
	Type               string        `json:"type"`          // Always EnergyAssetType
	ID                 string        `json:"id"`            // World state key of the asset
	ParticipantID      string        `json:"participantId"` // Owning participant
	Producer           string        `json:"producer"`
	EnergyType         string        `json:"energyType"`
	Units              float64       `json:"units"`
	TransactionHistory []TradeRecord `json:"transactionHistory"`
}

// NewEnergyAsset builds an asset with an empty history.
func NewEnergyAsset(participantID, id, producer, energyType string, units float64) *EnergyAsset {
	return &EnergyAsset{
		Type:               EnergyAssetType,
		ID:                 id,
		ParticipantID:      participantID,
		Producer:           producer,
		EnergyType:         energyType,
		Units:              units,
		TransactionHistory: []TradeRecord{},
	}
}

// MarshalEnergyAsset serializes a for world state.
func MarshalEnergyAsset(a *EnergyAsset) ([]byte, error) {
	return json.Marshal(a)
}

// UnmarshalEnergyAsset restores an asset previously written by MarshalEnergyAsset.
func UnmarshalEnergyAsset(data []byte) (*EnergyAsset, error) {
	var a EnergyAsset
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if a.TransactionHistory == nil {
		a.TransactionHistory = []TradeRecord{}
	}
	return &a, nil
}

// AssetPatch is a partial update of an EnergyAsset. Only the fields listed here
// may be changed. The owner is fixed: ownership moves only through a trade,
// which mints a new asset for the buyer.
type AssetPatch struct {
	Producer      *string  `json:"producer,omitempty"`
	EnergyType    *string  `json:"energyType,omitempty"`
	Units         *float64 `json:"units,omitempty"`
}

// ParseAssetPatch decodes a JSON object into an AssetPatch. Unknown or
// non-patchable fields and values of the wrong type are rejected.
func ParseAssetPatch(data []byte) (*AssetPatch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var p AssetPatch
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid patch: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid patch: trailing data after object")
	}
	return &p, nil
}

// IsEmpty reports whether the patch changes nothing.
func (p *AssetPatch) IsEmpty() bool {
	return p.Producer == nil && p.EnergyType == nil && p.Units == nil
}

// Apply merges the patch onto a.
func (p *AssetPatch) Apply(a *EnergyAsset) {
	if p.Producer != nil {
		a.Producer = *p.Producer
	}
	if p.EnergyType != nil {
		a.EnergyType = *p.EnergyType
	}
	if p.Units != nil {
		a.Units = *p.Units
	}
}
