package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/model"
)

const (
	maxStringInputLength = 256
	tradeAssetIDPrefix   = "asset_"
)

// tradeAssetNamespace seeds the name-based UUIDs of assets minted by trades.
var tradeAssetNamespace = uuid.MustParse("6f1c2a52-93f4-4c55-a3a8-6a1f0e3f1b7d")

// --- Core Helper Methods (used across multiple operations) ---

// getCurrentTxTimestamp retrieves the current transaction timestamp from the stub.
func getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

// newTradeAssetID derives the id of the asset minted for the buyer. It is a
// name-based UUID over the transaction id and the trade inputs, so every
// endorser computes the same id and no two transactions share one.
func newTradeAssetID(txID, buyerID, sellerID, sellingAssetID string, units float64) string {
	name := strings.Join([]string{txID, buyerID, sellerID, sellingAssetID, strconv.FormatFloat(units, 'g', -1, 64)}, "\x00")
	return tradeAssetIDPrefix + uuid.NewSHA1(tradeAssetNamespace, []byte(name)).String()
}

// --- Validation Helper Functions ---

func validateRequiredString(input, field string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidArgument, field)
	}
	if len(input) > maxStringInputLength {
		return fmt.Errorf("%w: %s exceeds max length %d", ErrInvalidArgument, field, maxStringInputLength)
	}
	return nil
}

func validateUnits(units float64, field string, allowZero bool) error {
	if math.IsNaN(units) || math.IsInf(units, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidArgument, field)
	}
	if units < 0 || (!allowZero && units == 0) {
		if allowZero {
			return fmt.Errorf("%w: %s cannot be negative", ErrInvalidArgument, field)
		}
		return fmt.Errorf("%w: %s must be positive", ErrInvalidArgument, field)
	}
	return nil
}

// --- World state access ---

func assetExists(ctx contractapi.TransactionContextInterface, assetID string) (bool, error) {
	data, err := ctx.GetStub().GetState(assetID)
	if err != nil {
		return false, fmt.Errorf("failed to read asset '%s' from ledger: %w", assetID, err)
	}
	return len(data) > 0, nil
}

// getAssetByID is an internal helper to retrieve and unmarshal an asset.
func getAssetByID(ctx contractapi.TransactionContextInterface, assetID string) (*model.EnergyAsset, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, fmt.Errorf("%w: assetId cannot be empty", ErrInvalidArgument)
	}
	data, err := ctx.GetStub().GetState(assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset '%s' from ledger: %w", assetID, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: asset '%s' does not exist", ErrNotFound, assetID)
	}
	asset, err := model.UnmarshalEnergyAsset(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset '%s': %w", assetID, err)
	}
	if asset.Type != model.EnergyAssetType {
		// Participants live in the same keyspace.
		return nil, fmt.Errorf("%w: key '%s' does not hold an energy asset", ErrNotFound, assetID)
	}
	return asset, nil
}

func putAsset(ctx contractapi.TransactionContextInterface, asset *model.EnergyAsset) error {
	data, err := model.MarshalEnergyAsset(asset)
	if err != nil {
		return fmt.Errorf("failed to marshal asset '%s': %w", asset.ID, err)
	}
	if err := ctx.GetStub().PutState(asset.ID, data); err != nil {
		return fmt.Errorf("failed to save asset '%s' to ledger: %w", asset.ID, err)
	}
	return nil
}

// emitTradeEvent queues the TradeCompleted chaincode event. The event is only
// delivered if the transaction commits.
func emitTradeEvent(ctx contractapi.TransactionContextInterface, record model.TradeRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event payload: %w", model.TradeCompletedEvent, err)
	}
	if err := ctx.GetStub().SetEvent(model.TradeCompletedEvent, payload); err != nil {
		return fmt.Errorf("failed to set %s event: %w", model.TradeCompletedEvent, err)
	}
	return nil
}
