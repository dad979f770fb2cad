package contract

import (
	"fmt"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/model"
)

// --- Trading ---

// TradeEnergy moves units from the seller's asset into a new asset owned by the
// buyer. Both assets record the same TradeRecord and a TradeCompleted event is
// queued for the commit. The selling asset is never reassigned or deleted, even
// when its balance reaches zero.
func (c *EnergyTradingContract) TradeEnergy(ctx contractapi.TransactionContextInterface,
	buyerID, sellerID, sellingAssetID string, units float64) (*model.EnergyAsset, error) {

	logger.Infof("Chaincode Call: TradeEnergy %v units of '%s' from '%s' to '%s'", units, sellingAssetID, sellerID, buyerID)

	if buyerID == sellerID {
		return nil, fmt.Errorf("%w: buyer and seller cannot be the same participant", ErrInvalidArgument)
	}
	if err := validateRequiredString(buyerID, "buyerId"); err != nil {
		return nil, err
	}

	sellingAsset, err := getAssetByID(ctx, sellingAssetID)
	if err != nil {
		return nil, err
	}
	if err := validateUnits(units, "units", false); err != nil {
		return nil, err
	}
	if sellingAsset.Units < units {
		return nil, fmt.Errorf("%w: asset '%s' holds %v units, %v requested", ErrInsufficientUnits, sellingAssetID, sellingAsset.Units, units)
	}
	if sellingAsset.ParticipantID != sellerID {
		return nil, fmt.Errorf("%w: only the owner of asset '%s' can sell it", ErrUnauthorized, sellingAssetID)
	}

	now, err := getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("TradeEnergy: %w", err)
	}

	buyingAssetID := newTradeAssetID(ctx.GetStub().GetTxID(), buyerID, sellerID, sellingAssetID, units)
	taken, err := assetExists(ctx, buyingAssetID)
	if err != nil {
		return nil, fmt.Errorf("TradeEnergy: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: generated asset id '%s'", ErrAlreadyExists, buyingAssetID)
	}

	record := model.TradeRecord{
		BuyerID:        buyerID,
		SellerID:       sellerID,
		Units:          units,
		Timestamp:      now.UTC().Format(time.RFC3339Nano),
		TargetAudience: []string{buyerID, sellerID},
	}

	buyingAsset := model.NewEnergyAsset(buyerID, buyingAssetID, sellingAsset.Producer, sellingAsset.EnergyType, units)
	buyingAsset.TransactionHistory = append(buyingAsset.TransactionHistory, record)

	sellingAsset.Units -= units
	sellingAsset.TransactionHistory = append(sellingAsset.TransactionHistory, record)

	if err := putAsset(ctx, buyingAsset); err != nil {
		return nil, fmt.Errorf("TradeEnergy: %w", err)
	}
	if err := putAsset(ctx, sellingAsset); err != nil {
		return nil, fmt.Errorf("TradeEnergy: %w", err)
	}
	if err := emitTradeEvent(ctx, record); err != nil {
		return nil, fmt.Errorf("TradeEnergy: %w", err)
	}

	logger.Infof("Trade completed: '%s' bought %v units from '%s' (asset '%s' -> '%s')", buyerID, units, sellerID, sellingAssetID, buyingAssetID)
	return buyingAsset, nil
}
