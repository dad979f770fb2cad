package contract

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"testing"

	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/require"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/model"
)

// fakeIdentity implements cid.ClientIdentity for tests.
type fakeIdentity struct {
	cn    string
	attrs map[string]string
}

func (f *fakeIdentity) GetID() (string, error) {
	return fmt.Sprintf("x509::CN=%s,OU=client::CN=ca.org1.example.com", f.cn), nil
}

func (f *fakeIdentity) GetMSPID() (string, error) { return "Org1MSP", nil }

func (f *fakeIdentity) GetAttributeValue(name string) (string, bool, error) {
	v, ok := f.attrs[name]
	return v, ok, nil
}

func (f *fakeIdentity) AssertAttributeValue(name, value string) error {
	v, ok := f.attrs[name]
	if !ok {
		return fmt.Errorf("attribute '%s' was not found", name)
	}
	if v != value {
		return fmt.Errorf("attribute '%s' equals '%s', not '%s'", name, v, value)
	}
	return nil
}

func (f *fakeIdentity) GetX509Certificate() (*x509.Certificate, error) {
	return &x509.Certificate{Subject: pkix.Name{CommonName: f.cn}}, nil
}

func adminIdentity() *fakeIdentity {
	return &fakeIdentity{cn: "registrar", attrs: map[string]string{"admin": "true"}}
}

func participantIdentity(id string, role model.Role) *fakeIdentity {
	return &fakeIdentity{cn: id, attrs: map[string]string{"id": id, "role": string(role)}}
}

// testLedger is a MockStub shared by several callers, as one world state
// would be shared by several clients of the same channel.
type testLedger struct {
	t     *testing.T
	stub  *shimtest.MockStub
	txSeq int
}

func newTestLedger(t *testing.T) *testLedger {
	return &testLedger{t: t, stub: shimtest.NewMockStub("energytrading", nil)}
}

// as starts a new transaction invoked by identity and returns its context.
func (l *testLedger) as(identity *fakeIdentity) *contractapi.TransactionContext {
	l.txSeq++
	l.stub.MockTransactionStart(fmt.Sprintf("tx%d", l.txSeq))
	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(l.stub)
	ctx.SetClientIdentity(identity)
	return ctx
}

func (l *testLedger) mustCreateParticipant(id string, role model.Role) {
	l.t.Helper()
	_, err := new(IdentityContract).CreateParticipant(l.as(adminIdentity()), id, "Name of "+id, string(role))
	require.NoError(l.t, err)
}

func (l *testLedger) mustCreateAsset(owner, assetID string, units float64) {
	l.t.Helper()
	_, err := new(EnergyTradingContract).CreateAsset(l.as(participantIdentity(owner, model.RoleProducer)), owner, assetID, "farm-"+owner, "SOLAR", units)
	require.NoError(l.t, err)
}

func (l *testLedger) rawState(key string) []byte {
	return l.stub.State[key]
}

// drainEvents returns the chaincode events queued so far.
func (l *testLedger) drainEvents() map[string][][]byte {
	events := map[string][][]byte{}
	for {
		select {
		case ev := <-l.stub.ChaincodeEventsChannel:
			events[ev.EventName] = append(events[ev.EventName], ev.Payload)
		default:
			return events
		}
	}
}
