package dispatcher

import (
	"fmt"
	"sync"

	"github.com/hyperledger/fabric-sdk-go/pkg/client/event"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
)

// FabricSource listens to chaincode events of one channel through a peer
// event service. Block events are requested so that payloads are included.
type FabricSource struct {
	sdk    *fabsdk.FabricSDK
	client *event.Client
	reg    fab.Registration
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewFabricSource connects with the identity cfg.User of cfg.Org and
// registers for the events of cfg.Chaincode matching cfg.EventFilter.
func NewFabricSource(cfg FabricConfig) (*FabricSource, error) {
	sdk, err := fabsdk.New(config.FromFile(cfg.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("create fabric sdk from '%s': %w", cfg.ConfigPath, err)
	}

	channelCtx := sdk.ChannelContext(cfg.Channel, fabsdk.WithUser(cfg.User), fabsdk.WithOrg(cfg.Org))
	client, err := event.New(channelCtx, event.WithBlockEvents())
	if err != nil {
		sdk.Close()
		return nil, fmt.Errorf("create event client for channel '%s': %w", cfg.Channel, err)
	}

	reg, notifier, err := client.RegisterChaincodeEvent(cfg.Chaincode, cfg.EventFilter)
	if err != nil {
		sdk.Close()
		return nil, fmt.Errorf("register for events of chaincode '%s': %w", cfg.Chaincode, err)
	}
	logger.Infof("Listening to '%s' events of chaincode '%s' on channel '%s'", cfg.EventFilter, cfg.Chaincode, cfg.Channel)

	s := &FabricSource{sdk: sdk, client: client, reg: reg, events: make(chan Event), done: make(chan struct{})}
	go s.forward(notifier)
	return s, nil
}

func (s *FabricSource) forward(notifier <-chan *fab.CCEvent) {
	defer close(s.events)
	for cc := range notifier {
		ev := Event{
			Name:        cc.EventName,
			Payload:     cc.Payload,
			TxID:        cc.TxID,
			BlockNumber: cc.BlockNumber,
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *FabricSource) Events() <-chan Event {
	return s.events
}

// Close unregisters from the event service and releases the SDK. The event
// channel is closed once forwarding stops.
func (s *FabricSource) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.client.Unregister(s.reg)
		s.sdk.Close()
	})
	return nil
}
