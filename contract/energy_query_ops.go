package contract

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/model"
)

// Matches META-INF/statedb/couchdb/indexes/indexTypeParticipant.json.
const (
	assetsByParticipantDesignDoc = "_design/indexTypeParticipantDoc"
	assetsByParticipantIndex     = "indexTypeParticipant"
)

// --- Query Functions ---

// GetAssetsByParticipant lists the energy assets owned by participantID.
// On CouchDB it runs an indexed rich query; on LevelDB, where rich queries are
// unavailable, it falls back to a full range scan.
func (c *EnergyTradingContract) GetAssetsByParticipant(ctx contractapi.TransactionContextInterface, participantID string) ([]*model.EnergyAsset, error) {
	logger.Debugf("Chaincode Call: GetAssetsByParticipant '%s'", participantID)
	if err := validateRequiredString(participantID, "participantId"); err != nil {
		return nil, err
	}

	query, err := json.Marshal(map[string]any{
		"selector": map[string]any{
			"type":          model.EnergyAssetType,
			"participantId": participantID,
		},
		"use_index": []string{assetsByParticipantDesignDoc, assetsByParticipantIndex},
	})
	if err != nil {
		return nil, fmt.Errorf("GetAssetsByParticipant: failed to build query: %w", err)
	}

	resultsIterator, err := ctx.GetStub().GetQueryResult(string(query))
	if err != nil {
		logger.Warningf("GetAssetsByParticipant: rich query failed (%v). Falling back to full scan (SLOW).", err)
		resultsIterator, err = ctx.GetStub().GetStateByRange("", "")
		if err != nil {
			return nil, fmt.Errorf("GetAssetsByParticipant: rich query and range scan both failed: %w", err)
		}
	}
	defer resultsIterator.Close()

	assets, err := collectAssets(resultsIterator, func(a *model.EnergyAsset) bool {
		return a.ParticipantID == participantID
	})
	if err != nil {
		return nil, fmt.Errorf("GetAssetsByParticipant: %w", err)
	}
	logger.Debugf("GetAssetsByParticipant: found %d assets for '%s'", len(assets), participantID)
	return assets, nil
}

// collectAssets drains iterator, keeping energy assets accepted by keep.
// Participant records and undecodable values are skipped.
func collectAssets(iterator shim.StateQueryIteratorInterface, keep func(*model.EnergyAsset) bool) ([]*model.EnergyAsset, error) {
	assets := []*model.EnergyAsset{}
	for iterator.HasNext() {
		kv, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate results: %w", err)
		}
		asset, err := model.UnmarshalEnergyAsset(kv.Value)
		if err != nil {
			logger.Warningf("Error unmarshalling asset (key: %s): %v. Skipping.", kv.Key, err)
			continue
		}
		if asset.Type != model.EnergyAssetType || !keep(asset) {
			continue
		}
		assets = append(assets, asset)
	}
	return assets, nil
}
