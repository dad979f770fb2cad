package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/model"
)

var logger = flogging.MustGetLogger("energytrading.contract")

// IdentityContract manages participants and their roles.
// @contract:IdentityContract
type IdentityContract struct {
	contractapi.Contract
}

// These are thin wrappers over IdentityManager, keeping the contract API clean.

func (c *IdentityContract) CreateParticipant(ctx contractapi.TransactionContextInterface, id, name, role string) (*model.Participant, error) {
	logger.Infof("Chaincode Call: CreateParticipant '%s' with role '%s'", id, role)
	return NewIdentityManager(ctx).CreateParticipant(id, name, model.Role(role))
}

func (c *IdentityContract) GetParticipant(ctx contractapi.TransactionContextInterface, id string) (*model.Participant, error) {
	logger.Debugf("Chaincode Call: GetParticipant '%s'", id)
	return NewIdentityManager(ctx).GetParticipantForCaller(id)
}

func (c *IdentityContract) GetAllParticipants(ctx contractapi.TransactionContextInterface) ([]model.ParticipantSummary, error) {
	logger.Debug("Chaincode Call: GetAllParticipants")
	return NewIdentityManager(ctx).GetAllParticipants()
}

func (c *IdentityContract) GetRoleCounts(ctx contractapi.TransactionContextInterface) ([]model.RoleCount, error) {
	logger.Debug("Chaincode Call: GetRoleCounts (public access)")
	return NewIdentityManager(ctx).GetRoleCounts()
}

func (c *IdentityContract) UpdateParticipantRole(ctx contractapi.TransactionContextInterface, id, role string) (*model.Participant, error) {
	logger.Infof("Chaincode Call: UpdateParticipantRole '%s' to '%s'", id, role)
	return NewIdentityManager(ctx).UpdateParticipantRole(id, model.Role(role))
}

// GetCallerIdentity returns the claims the chaincode sees for the invoking credential.
func (c *IdentityContract) GetCallerIdentity(ctx contractapi.TransactionContextInterface) (*model.CallerIdentity, error) {
	return NewIdentityManager(ctx).GetCallerIdentity()
}
