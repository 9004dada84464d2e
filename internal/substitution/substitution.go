// Package substitution resolves the ordered set of candidate machines an
// operation may run on, per the quoted-machine / substitution-group /
// compatible-list / type-fallback chain.
package substitution

import (
	"github.com/google/uuid"

	"github.com/cnc-scheduling/engine/internal/entity"
)

// Resolve builds the ordered, deduplicated CandidateMachineSet for op from
// the fleet:
//
//  1. If OriginalQuotedMachineID names an Available machine, it goes first.
//  2. Extend with every Available machine that belongs to every one of its
//     substitution groups (a quoted machine with no groups adds none).
//  3. Union with every Available machine named in CompatibleMachines.
//  4. If still empty, fall back to every Available machine whose Type tag
//     equals op.MachineType.
//
// Insertion order is preserved; duplicates (by Machine.ID) are dropped.
func Resolve(op entity.RoutingOperation, fleet []entity.Machine) entity.CandidateMachineSet {
	byMachineID := indexByMachineID(fleet)
	seen := map[uuid.UUID]bool{}
	var ordered []entity.Machine

	add := func(m entity.Machine) {
		if seen[m.ID] {
			return
		}
		seen[m.ID] = true
		ordered = append(ordered, m)
	}

	var quoted *entity.Machine
	if op.OriginalQuotedMachineID != nil {
		if m, ok := byMachineID[*op.OriginalQuotedMachineID]; ok && m.Status == entity.MachineAvailable {
			quoted = &m
			add(m)
		}
	}

	if quoted != nil {
		for _, m := range fleet {
			if m.Status != entity.MachineAvailable {
				continue
			}
			if sharesGroup(quoted.SubstitutionGroups, m.SubstitutionGroups) {
				add(m)
			}
		}
	}

	for _, machineID := range op.CompatibleMachines {
		if m, ok := byMachineID[machineID]; ok && m.Status == entity.MachineAvailable {
			add(m)
		}
	}

	if len(ordered) == 0 {
		for _, m := range fleet {
			if m.Status == entity.MachineAvailable && m.Type == op.MachineType {
				add(m)
			}
		}
	}

	return entity.CandidateMachineSet{Machines: ordered}
}

func indexByMachineID(fleet []entity.Machine) map[string]entity.Machine {
	idx := make(map[string]entity.Machine, len(fleet))
	for _, m := range fleet {
		idx[m.MachineID] = m
	}
	return idx
}

func sharesGroup(a, b []string) bool {
	if len(a) == 0 {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
