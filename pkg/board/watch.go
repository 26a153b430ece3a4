package board

import "github.com/cbodonnell/scoreboard/pkg/facet"

// The Watch helpers cover the three read patterns a view layer needs: one
// player, one field across all players, and the roster itself. Each returns
// an unsubscribe function.

// WatchPlayer calls fn whenever any facet of id changes or id is removed.
func (b *Board) WatchPlayer(id PlayerID, fn func()) (unsubscribe func()) {
	unsubscribeUpdated := b.events.FacetUpdated.Subscribe(func(e FacetUpdated) {
		if e.ID == id {
			fn()
		}
	})
	unsubscribeRemoved := b.events.PlayerRemoved.Subscribe(func(e PlayerRemoved) {
		if e.ID == id {
			fn()
		}
	})
	return func() {
		unsubscribeUpdated()
		unsubscribeRemoved()
	}
}

// WatchField calls fn with the player ID whenever def changes for any player.
func (b *Board) WatchField(def facet.Def, fn func(id PlayerID)) (unsubscribe func()) {
	return b.events.FacetUpdated.Subscribe(func(e FacetUpdated) {
		if e.Field == def {
			fn(e.ID)
		}
	})
}

// WatchRoster calls fn whenever a player is added or removed.
func (b *Board) WatchRoster(fn func()) (unsubscribe func()) {
	unsubscribeAdded := b.events.PlayerAdded.Subscribe(func(PlayerAdded) { fn() })
	unsubscribeRemoved := b.events.PlayerRemoved.Subscribe(func(PlayerRemoved) { fn() })
	return func() {
		unsubscribeAdded()
		unsubscribeRemoved()
	}
}

// WatchGlobal calls fn whenever the global field def changes.
func (b *Board) WatchGlobal(def facet.Def, fn func()) (unsubscribe func()) {
	return b.events.GlobalUpdated.Subscribe(func(e GlobalUpdated) {
		if e.Field == def {
			fn()
		}
	})
}
