package client

import (
	"context"
	"sync"

	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/fabric"
	"github.com/starlane-io/starlane/pkg/wave"
)

// fabricSender is the Sender a Client built by Connect uses: it pairs a
// fabric.ClientLane with its own Exchanger, exactly the way
// router.GravityRouter pairs a traversal engine with one, and pumps
// whatever the lane receives into the exchanger so Exchange's blocking
// wait and Route's fire-and-forget both resolve the same way they would
// against an in-process engine.
type fabricSender struct {
	lane      *fabric.ClientLane
	exchanger *exchange.Exchanger

	closeOnce sync.Once
	done      chan struct{}
}

func newFabricSender(lane *fabric.ClientLane) *fabricSender {
	s := &fabricSender{
		lane:      lane,
		exchanger: exchange.NewExchanger(exchange.DefaultTimeouts),
		done:      make(chan struct{}),
	}
	go s.recvLoop()
	return s
}

// recvLoop feeds every frame the remote star sends back into the
// exchanger until the lane closes.
func (s *fabricSender) recvLoop() {
	for {
		w, err := s.lane.Recv()
		if err != nil {
			return
		}
		s.exchanger.Reflected(w)
	}
}

// Route sends w and returns as soon as the lane has accepted it; it
// does not wait for any reflection.
func (s *fabricSender) Route(ctx context.Context, w wave.Wave) error {
	return s.lane.Send(w)
}

// Exchange registers w with the exchanger before sending it, so no
// reflection the recv loop observes can race ahead of the
// registration, then blocks for the aggregate.
func (s *fabricSender) Exchange(ctx context.Context, w wave.Wave) (exchange.ReflectedAggregate, error) {
	ch, err := s.exchanger.Exchange(ctx, w)
	if err != nil {
		return exchange.ReflectedAggregate{}, err
	}
	if err := s.lane.Send(w); err != nil {
		return exchange.ReflectedAggregate{}, err
	}
	select {
	case agg := <-ch:
		return agg, nil
	case <-ctx.Done():
		return exchange.ReflectedAggregate{}, ctx.Err()
	}
}

func (s *fabricSender) close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.lane.Close()
		close(s.done)
	})
	return err
}
