package adapter

// maxContinuousSteps bounds the moves a single dequeue pass makes from
// continuous sliding and fast falling.
const maxContinuousSteps = 4096

// GameDequeueActions applies queued actions to game in order, stopping at an
// end-of-cycle marker. An action game cannot take in its current state is
// dropped when the adapter discards, and otherwise stays queued and stops
// the pass. An action whose timing is not yet right always stops the pass.
// Once the queue is empty, continuous sliding and fast falling are applied,
// sliding fully before each fall. It reports whether anything was applied.
func (a *Adapter) GameDequeueActions(game Game) bool {
	a.lock.Lock()
	generation := a.generation
	a.lock.Unlock()

	processed := false
	for {
		a.lock.Lock()
		if a.generation != generation {
			a.lock.Unlock()
			break
		}
		b, ok := a.incoming.Peek()
		a.lock.Unlock()
		if !ok {
			if a.applyContinuous(game) {
				processed = true
			}
			break
		}

		action := ActionFromByte(b)
		if action.Kind == KindEndCycle {
			break
		}
		if !game.TimingOK(action.Kind) {
			break
		}
		legal := game.StateOK(action.Kind)
		if !legal && !a.discards {
			break
		}

		a.lock.Lock()
		if a.generation != generation {
			a.lock.Unlock()
			break
		}
		a.incoming.Discard(1)
		a.lock.Unlock()

		if !legal {
			a.logger.Trace("Discarded %s", action)
			continue
		}
		a.apply(game, action)
		processed = true
	}

	if processed {
		a.listener.Dequeued()
	}
	return processed
}

func (a *Adapter) apply(game Game, action Action) {
	switch action.Kind {
	case KindMoveLeft:
		game.MoveLeftOnce()
	case KindMoveRight:
		game.MoveRightOnce()
	case KindSlideLeft:
		slide(game, Left)
	case KindSlideRight:
		slide(game, Right)
	case KindTurnCW:
		game.TurnCW(action.Lean)
	case KindTurnCCW:
		game.TurnCCW(action.Lean)
	case KindTurnCW180:
		game.TurnCW180(action.Lean)
	case KindTurnCCW180:
		game.TurnCCW180(action.Lean)
	case KindFlip:
		game.Flip(action.Lean)
	case KindUseReserve:
		game.UseReserve(action.Lean)
	case KindFall:
		game.Fall()
	case KindDrop:
		game.Drop()
	case KindLock:
		game.LockPiece()
	case KindAutolock:
		game.Autolock()
	case KindFallOrAutolock:
		if game.StateOK(KindFall) {
			game.Fall()
		} else {
			game.Autolock()
		}
	case KindAdvance:
	default:
		a.logger.Error("Cannot apply %s", action)
	}
}

// slide moves towards dir until game refuses and reports whether it moved.
func slide(game Game, dir Direction) bool {
	kind := moveKind(dir)
	moved := false
	for i := 0; i < maxContinuousSteps && game.StateOK(kind) && game.TimingOK(kind); i++ {
		if dir == Left {
			game.MoveLeftOnce()
		} else {
			game.MoveRightOnce()
		}
		moved = true
	}
	return moved
}

func (a *Adapter) applyContinuous(game Game) bool {
	a.lock.Lock()
	slideLeft, slideRight := a.slideLeft, a.slideRight
	fastFall, locks := a.fastFall, a.fastFallLocks
	a.lock.Unlock()

	sliding := slideLeft != slideRight
	dir := Left
	if slideRight {
		dir = Right
	}

	applied := false
	for i := 0; i < maxContinuousSteps; i++ {
		moved := false
		if sliding && slide(game, dir) {
			moved = true
		}
		if fastFall {
			switch {
			case game.StateOK(KindFall) && game.TimingOK(KindFall):
				game.Fall()
				moved = true
			case locks && game.StateOK(KindAutolock) && game.TimingOK(KindAutolock):
				game.Autolock()
				return true
			}
		}
		if !moved {
			break
		}
		applied = true
	}
	return applied
}
