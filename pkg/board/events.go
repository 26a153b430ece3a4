package board

import (
	"github.com/cbodonnell/scoreboard/pkg/events"
	"github.com/cbodonnell/scoreboard/pkg/facet"
)

type PlayerAdded struct {
	ID PlayerID
}

// PlayerRemoved is emitted before the player's data is deleted, so handlers
// can still read its final state.
type PlayerRemoved struct {
	ID PlayerID
}

type FacetUpdated struct {
	ID    PlayerID
	Field facet.Def
}

type GlobalUpdated struct {
	Field facet.Def
}

// Events holds the board's notification channels. Channels are independent:
// no ordering is promised between them beyond the order of the mutations
// that trigger them.
type Events struct {
	PlayerAdded   *events.Channel[PlayerAdded]
	PlayerRemoved *events.Channel[PlayerRemoved]
	FacetUpdated  *events.Channel[FacetUpdated]
	GlobalUpdated *events.Channel[GlobalUpdated]
}

func newEvents() *Events {
	return &Events{
		PlayerAdded:   events.NewChannel[PlayerAdded](),
		PlayerRemoved: events.NewChannel[PlayerRemoved](),
		FacetUpdated:  events.NewChannel[FacetUpdated](),
		GlobalUpdated: events.NewChannel[GlobalUpdated](),
	}
}

// OnChange subscribes fn to every channel.
func (e *Events) OnChange(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	unsubscribes := []func(){
		e.PlayerAdded.Subscribe(func(PlayerAdded) { fn() }),
		e.PlayerRemoved.Subscribe(func(PlayerRemoved) { fn() }),
		e.FacetUpdated.Subscribe(func(FacetUpdated) { fn() }),
		e.GlobalUpdated.Subscribe(func(GlobalUpdated) { fn() }),
	}
	return func() {
		for _, u := range unsubscribes {
			u()
		}
	}
}
