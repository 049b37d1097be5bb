package adapter

// GameBeginActionCycle asks whether game may begin its next cycle. The first
// call after a cycle ends captures the outgoing state and attacks of game.
// It returns true once the incoming state for the next cycle has also been
// installed; game has then been set to that state, the attacks held for the
// next cycle are released and a leading end-of-cycle marker is consumed from
// the incoming queue. A capture that a synchronization overtakes is dropped.
func (a *Adapter) GameBeginActionCycle(game Game) bool {
	a.listener.BeforeCycleBegin()

	a.lock.Lock()
	capture := !a.cycle.outgoingCaptured()
	generation := a.generation
	a.lock.Unlock()

	if capture {
		a.captureState.Reset()
		game.CopyStateIntoCycleState(a.captureState)
		a.captureAttacks = game.AggregateAndClearOutgoingAttacks(a.captureAttacks[:0])

		a.lock.Lock()
		if a.generation != generation {
			a.logger.Debug("Dropped cycle capture superseded by synchronization")
			a.lock.Unlock()
			return false
		}
		a.outgoingState.TakeVals(a.captureState)
		a.outgoingUnsent = true
		a.outgoingAny = true
		for _, d := range a.captureAttacks {
			a.attacksOut = appendAttack(a.attacksOut, d)
		}
		switch a.cycle {
		case CycleIdle:
			a.cycle = CycleOutgoingCaptured
		case CycleIncomingInstalled:
			a.cycle = CycleBothReady
		}
		a.logger.Trace("Captured outgoing cycle state, now %s", a.cycle)
		a.lock.Unlock()
	}

	a.lock.Lock()
	if a.cycle != CycleBothReady {
		a.lock.Unlock()
		return false
	}
	a.applyState.TakeVals(a.incomingState)
	for _, d := range a.attacksNext {
		a.attacksThis = appendAttack(a.attacksThis, d)
	}
	a.attacksNext = a.attacksNext[:0]
	if b, ok := a.incoming.Peek(); ok && ActionFromByte(b).Kind == KindEndCycle {
		a.incoming.Discard(1)
	}
	a.cycle = CycleIdle
	a.logger.Trace("Beginning cycle")
	a.lock.Unlock()

	game.SetStateFromCycleState(a.applyState)
	a.listener.AfterCycleBegin()
	return true
}
