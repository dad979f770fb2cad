package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/model"
)

var idLogger = flogging.MustGetLogger("energytrading.identitymanager")

const (
	participantKeyPrefix = model.ParticipantType + ":"

	// Credential attributes issued by the CA at enrollment.
	participantIDAttribute = "id"
	roleAttribute          = "role"
	adminAttribute         = "admin"

	// Subject CN of the CA bootstrap identity.
	adminCommonName = "admin"
)

// IdentityManager handles participant records, role checks and admin privileges.
type IdentityManager struct {
	Ctx contractapi.TransactionContextInterface
}

// NewIdentityManager creates a new instance of IdentityManager.
func NewIdentityManager(ctx contractapi.TransactionContextInterface) *IdentityManager {
	return &IdentityManager{Ctx: ctx}
}

// participantKey returns the world state key of a participant record.
func participantKey(id string) string {
	return participantKeyPrefix + id
}

func validRolesList() string {
	names := make([]string, 0, len(model.Roles))
	for _, r := range model.Roles {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

func validateRole(role model.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: role '%s' is not valid. Valid roles are: %s", ErrInvalidArgument, role, validRolesList())
	}
	return nil
}

// --- Caller identity ---

// GetCurrentIdentityFullID retrieves the full X.509 ID of the current transactor.
func (im *IdentityManager) GetCurrentIdentityFullID() (string, error) {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	return id, nil
}

// getAttribute returns a credential attribute, or "" when the credential does not carry it.
func (im *IdentityManager) getAttribute(name string) (string, error) {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	value, found, err := clientIdentity.GetAttributeValue(name)
	if err != nil {
		return "", fmt.Errorf("failed to read attribute '%s': %w", name, err)
	}
	if !found {
		return "", nil
	}
	return value, nil
}

// GetCurrentParticipantID returns the "id" attribute of the caller's credential.
func (im *IdentityManager) GetCurrentParticipantID() (string, error) {
	return im.getAttribute(participantIDAttribute)
}

// IsCurrentUserAdmin reports whether the caller holds admin capability. The
// capability comes from the CA-issued "admin=true" attribute, or from the
// CommonName of the parsed caller certificate being exactly "admin".
func (im *IdentityManager) IsCurrentUserAdmin() (bool, error) {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return false, errors.New("client identity is nil from context")
	}
	if err := clientIdentity.AssertAttributeValue(adminAttribute, "true"); err == nil {
		return true, nil
	}
	cert, err := clientIdentity.GetX509Certificate()
	if err != nil {
		return false, fmt.Errorf("failed to read caller certificate: %w", err)
	}
	return cert != nil && cert.Subject.CommonName == adminCommonName, nil
}

// requireAdmin fails with ErrUnauthorized unless the caller is an admin.
func (im *IdentityManager) requireAdmin(action string) error {
	isAdmin, err := im.IsCurrentUserAdmin()
	if err != nil {
		return fmt.Errorf("failed to check admin status: %w", err)
	}
	if !isAdmin {
		callerID, _ := im.GetCurrentIdentityFullID() // Best effort, only used in the message
		return fmt.Errorf("%w: only administrators can %s (caller '%s')", ErrUnauthorized, action, callerID)
	}
	return nil
}

// GetCallerIdentity collects the claims of the current caller.
func (im *IdentityManager) GetCallerIdentity() (*model.CallerIdentity, error) {
	fullID, err := im.GetCurrentIdentityFullID()
	if err != nil {
		return nil, err
	}
	participantID, err := im.GetCurrentParticipantID()
	if err != nil {
		return nil, err
	}
	role, err := im.getAttribute(roleAttribute)
	if err != nil {
		return nil, err
	}
	isAdmin, err := im.IsCurrentUserAdmin()
	if err != nil {
		return nil, err
	}
	return &model.CallerIdentity{FullID: fullID, ParticipantID: participantID, Role: role, IsAdmin: isAdmin}, nil
}

// --- Participant records ---

// participantExists reports whether a participant record is stored under id.
func (im *IdentityManager) participantExists(id string) (bool, error) {
	data, err := im.Ctx.GetStub().GetState(participantKey(id))
	if err != nil {
		return false, fmt.Errorf("failed to read participant '%s': %w", id, err)
	}
	return len(data) > 0, nil
}

// GetParticipant loads a participant record without any authorization check.
func (im *IdentityManager) GetParticipant(id string) (*model.Participant, error) {
	data, err := im.Ctx.GetStub().GetState(participantKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read participant '%s': %w", id, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: participant with id '%s' does not exist", ErrNotFound, id)
	}
	p, err := model.UnmarshalParticipant(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal participant '%s': %w", id, err)
	}
	return p, nil
}

func (im *IdentityManager) putParticipant(p *model.Participant) error {
	data, err := model.MarshalParticipant(p)
	if err != nil {
		return fmt.Errorf("failed to marshal participant '%s': %w", p.ID, err)
	}
	if err := im.Ctx.GetStub().PutState(participantKey(p.ID), data); err != nil {
		return fmt.Errorf("failed to save participant '%s': %w", p.ID, err)
	}
	return nil
}

// CreateParticipant registers a new participant. Admin only.
func (im *IdentityManager) CreateParticipant(id, name string, role model.Role) (*model.Participant, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}
	if err := im.requireAdmin("create participants"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: participant id cannot be empty", ErrInvalidArgument)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: participant name cannot be empty", ErrInvalidArgument)
	}

	exists, err := im.participantExists(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: participant with id '%s'", ErrAlreadyExists, id)
	}

	p := model.NewParticipant(id, name, role)
	if err := im.putParticipant(p); err != nil {
		return nil, err
	}
	idLogger.Infof("Participant '%s' registered with role '%s'", id, role)
	return p, nil
}

// GetParticipantForCaller returns a participant record if the caller is that
// participant or an admin.
func (im *IdentityManager) GetParticipantForCaller(id string) (*model.Participant, error) {
	callerParticipantID, err := im.GetCurrentParticipantID()
	if err != nil {
		return nil, err
	}
	if callerParticipantID == "" || callerParticipantID != id {
		if err := im.requireAdmin("query other participants"); err != nil {
			return nil, err
		}
	}
	return im.GetParticipant(id)
}

// scanParticipants walks the whole keyspace and returns every participant.
// Assets share the keyspace, so the scan also walks them; only participant
// keys are kept.
func (im *IdentityManager) scanParticipants() ([]*model.Participant, error) {
	resultsIterator, err := im.Ctx.GetStub().GetStateByRange("", "")
	if err != nil {
		return nil, fmt.Errorf("failed to get state iterator: %w", err)
	}
	defer resultsIterator.Close()

	participants := []*model.Participant{}
	for resultsIterator.HasNext() {
		kv, iterErr := resultsIterator.Next()
		if iterErr != nil {
			return nil, fmt.Errorf("failed to iterate world state: %w", iterErr)
		}
		if !strings.HasPrefix(kv.Key, participantKeyPrefix) {
			continue
		}
		p, err := model.UnmarshalParticipant(kv.Value)
		if err != nil {
			idLogger.Warningf("Failed to unmarshal participant data for key '%s': %v. Skipping.", kv.Key, err)
			continue
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// GetAllParticipants projects every participant. Admin only.
func (im *IdentityManager) GetAllParticipants() ([]model.ParticipantSummary, error) {
	if err := im.requireAdmin("query all participants"); err != nil {
		return nil, err
	}
	all, err := im.scanParticipants()
	if err != nil {
		return nil, err
	}
	summaries := make([]model.ParticipantSummary, 0, len(all))
	for _, p := range all {
		summaries = append(summaries, model.ParticipantSummary{ID: p.ID, Name: p.Name, Role: p.Role})
	}
	idLogger.Debugf("Retrieved %d participants", len(summaries))
	return summaries, nil
}

// GetRoleCounts returns how many participants hold each role, in the order of
// model.Roles. Only counts are exposed, so any caller may ask.
func (im *IdentityManager) GetRoleCounts() ([]model.RoleCount, error) {
	all, err := im.scanParticipants()
	if err != nil {
		return nil, err
	}
	counts := make(map[model.Role]int, len(model.Roles))
	for _, p := range all {
		counts[p.Role]++
	}
	result := make([]model.RoleCount, 0, len(model.Roles))
	for _, role := range model.Roles {
		result = append(result, model.RoleCount{Role: role, Count: counts[role]})
	}
	return result, nil
}

// UpdateParticipantRole overwrites the role of an existing participant. Admin only.
func (im *IdentityManager) UpdateParticipantRole(id string, role model.Role) (*model.Participant, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}
	if err := im.requireAdmin("update participant roles"); err != nil {
		return nil, err
	}
	p, err := im.GetParticipant(id)
	if err != nil {
		return nil, err
	}
	previous := p.Role
	p.Role = role
	if err := im.putParticipant(p); err != nil {
		return nil, err
	}
	idLogger.Infof("Participant '%s' role changed from '%s' to '%s'", id, previous, role)
	return p, nil
}

// RequireProducer loads a participant and checks it may create energy assets.
func (im *IdentityManager) RequireProducer(participantID string) (*model.Participant, error) {
	p, err := im.GetParticipant(participantID)
	if err != nil {
		return nil, err
	}
	if !p.Role.CanProduce() {
		return nil, fmt.Errorf("%w: participant with id '%s' has role '%s' and cannot create assets", ErrUnauthorized, participantID, p.Role)
	}
	return p, nil
}
