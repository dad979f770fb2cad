package contract

import (
	"fmt"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/model"
)

// EnergyTradingContract manages energy assets and peer-to-peer trades.
// @contract:EnergyTradingContract
type EnergyTradingContract struct {
	contractapi.Contract
}

// InitLedger is kept for deployments that invoke an init transaction.
func (c *EnergyTradingContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	logger.Info("EnergyTradingContract initialised")
	return nil
}

// AssetExists reports whether an energy asset is stored under assetID.
func (c *EnergyTradingContract) AssetExists(ctx contractapi.TransactionContextInterface, assetID string) (bool, error) {
	_, err := getAssetByID(ctx, assetID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// --- Lifecycle: Producer Operations ---

func (c *EnergyTradingContract) CreateAsset(ctx contractapi.TransactionContextInterface,
	participantID, assetID, producer, energyType string, units float64) (*model.EnergyAsset, error) {

	logger.Infof("Chaincode Call: CreateAsset '%s' for participant '%s'", assetID, participantID)

	if _, err := NewIdentityManager(ctx).RequireProducer(participantID); err != nil {
		return nil, fmt.Errorf("CreateAsset: %w", err)
	}

	if err := validateRequiredString(assetID, "assetId"); err != nil {
		return nil, err
	}
	if strings.HasPrefix(assetID, participantKeyPrefix) {
		return nil, fmt.Errorf("%w: assetId '%s' collides with the participant key space", ErrInvalidArgument, assetID)
	}
	if err := validateRequiredString(producer, "producer"); err != nil {
		return nil, err
	}
	if err := validateRequiredString(energyType, "energyType"); err != nil {
		return nil, err
	}
	if err := validateUnits(units, "units", true); err != nil {
		return nil, err
	}

	exists, err := assetExists(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("CreateAsset: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: asset with id '%s'", ErrAlreadyExists, assetID)
	}

	asset := model.NewEnergyAsset(participantID, assetID, producer, energyType, units)
	if err := putAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("CreateAsset: %w", err)
	}
	logger.Infof("Asset '%s' (%v %s units) created for producer '%s'", assetID, units, energyType, participantID)
	return asset, nil
}

// --- Query Functions ---

func (c *EnergyTradingContract) ReadAsset(ctx contractapi.TransactionContextInterface, assetID string) (*model.EnergyAsset, error) {
	logger.Debugf("Chaincode Call: ReadAsset '%s'", assetID)
	return getAssetByID(ctx, assetID)
}

func (c *EnergyTradingContract) GetTransactionHistory(ctx contractapi.TransactionContextInterface, assetID string) ([]model.TradeRecord, error) {
	logger.Debugf("Chaincode Call: GetTransactionHistory '%s'", assetID)
	asset, err := getAssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return asset.TransactionHistory, nil
}

// --- Maintenance Operations ---

// UpdateAsset merges a JSON patch such as {"units": 50, "energyType": "WIND"}
// onto a stored asset.
func (c *EnergyTradingContract) UpdateAsset(ctx contractapi.TransactionContextInterface, assetID, patchJSON string) (*model.EnergyAsset, error) {
	logger.Infof("Chaincode Call: UpdateAsset '%s'", assetID)

	asset, err := getAssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	patch, err := model.ParseAssetPatch([]byte(patchJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: patch does not change any field", ErrInvalidArgument)
	}
	if patch.Producer != nil {
		if err := validateRequiredString(*patch.Producer, "producer"); err != nil {
			return nil, err
		}
	}
	if patch.EnergyType != nil {
		if err := validateRequiredString(*patch.EnergyType, "energyType"); err != nil {
			return nil, err
		}
	}
	if patch.Units != nil {
		if err := validateUnits(*patch.Units, "units", true); err != nil {
			return nil, err
		}
	}

	patch.Apply(asset)
	if err := putAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("UpdateAsset: %w", err)
	}
	logger.Infof("Asset '%s' updated", assetID)
	return asset, nil
}

func (c *EnergyTradingContract) DeleteAsset(ctx contractapi.TransactionContextInterface, assetID string) error {
	logger.Infof("Chaincode Call: DeleteAsset '%s'", assetID)
	if _, err := getAssetByID(ctx, assetID); err != nil {
		return err
	}
	if err := ctx.GetStub().DelState(assetID); err != nil {
		return fmt.Errorf("DeleteAsset: failed to delete asset '%s': %w", assetID, err)
	}
	logger.Infof("Asset '%s' deleted", assetID)
	return nil
}
