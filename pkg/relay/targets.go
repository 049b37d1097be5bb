package relay

import "github.com/cbodonnell/quantro/pkg/attack"

// Recipients resolves an attack target against a roster in cycle order. The
// sender must be in the roster; otherwise nobody receives the attack.
func Recipients(target attack.Target, roster []uint32, sender uint32) []uint32 {
	self := -1
	for i, id := range roster {
		if id == sender {
			self = i
			break
		}
	}
	if self < 0 {
		return nil
	}

	n := len(roster)
	switch target {
	case attack.TargetIncoming:
		return []uint32{sender}
	case attack.TargetCycleNext:
		if n < 2 {
			return nil
		}
		return []uint32{roster[(self+1)%n]}
	case attack.TargetCyclePrevious:
		if n < 2 {
			return nil
		}
		return []uint32{roster[(self+n-1)%n]}
	case attack.TargetAll, attack.TargetAllDivided:
		return append([]uint32(nil), roster...)
	case attack.TargetAllButSelf, attack.TargetAllButSelfDivided:
		others := make([]uint32, 0, n-1)
		for _, id := range roster {
			if id != sender {
				others = append(others, id)
			}
		}
		return others
	default:
		return nil
	}
}
