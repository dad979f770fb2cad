package contract

import "github.com/hyperledger/fabric-contract-api-go/contractapi"

// NewChaincode bundles both contracts into one deployable chaincode. The
// energy trading contract is the default.
func NewChaincode() (*contractapi.ContractChaincode, error) {
	energy := new(EnergyTradingContract)
	energy.Name = "EnergyTradingContract"
	identity := new(IdentityContract)
	identity.Name = "IdentityContract"
	return contractapi.NewChaincode(energy, identity)
}
