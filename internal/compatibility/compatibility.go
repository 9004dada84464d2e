// Package compatibility filters operator candidates for a machine +
// operation pair: role gating, work-center qualification, skill
// coverage, and the operator-lock rule.
package compatibility

import (
	"fmt"
	"strings"

	"github.com/cnc-scheduling/engine/internal/entity"
	"github.com/cnc-scheduling/engine/internal/validation"
)

// Eligible reports whether candidate may run op on machine, optionally
// constrained to lockedOperator (nil means no lock yet). This is the hot
// path the Placement Algorithm's search loop calls per candidate; it does
// no allocation beyond what role/skill comparison already needs.
func Eligible(candidate entity.Resource, op entity.RoutingOperation, machine entity.Machine, lockedOperator *entity.ResourceID) bool {
	if !roleQualifies(candidate.Role, op.MachineType) {
		return false
	}
	if !candidate.Active {
		return false
	}
	if !candidate.QualifiedFor(machine.MachineID) {
		return false
	}
	if !skillsSatisfied(candidate.Skills, op.RequiredSkills) {
		return false
	}
	if lockedOperator != nil && candidate.ID != *lockedOperator {
		return false
	}
	return true
}

// EligibleWithReasons runs the same gates as Eligible but accumulates a
// validation.Result explaining every failed gate, for diagnostic surfaces
// (e.g. "why did this job come back Unplaceable").
func EligibleWithReasons(candidate entity.Resource, op entity.RoutingOperation, machine entity.Machine, lockedOperator *entity.ResourceID) *validation.Result {
	result := validation.NewResult()

	if !roleQualifies(candidate.Role, op.MachineType) {
		result.AddError("ROLE_NOT_QUALIFIED", fmt.Sprintf("role %s cannot run %s operations", candidate.Role, op.MachineType))
	}
	if !candidate.Active {
		result.AddError("OPERATOR_INACTIVE", "operator is not active")
	}
	if !candidate.QualifiedFor(machine.MachineID) {
		result.AddError("WORK_CENTER_NOT_QUALIFIED", fmt.Sprintf("operator is not qualified on %s", machine.MachineID))
	}
	if !skillsSatisfied(candidate.Skills, op.RequiredSkills) {
		result.AddError("SKILLS_NOT_SATISFIED", "operator skill set does not cover required skills")
	}
	if lockedOperator != nil && candidate.ID != *lockedOperator {
		result.AddError("OPERATOR_LOCKED", "a different operator is locked to this operation")
	}

	return result
}

// roleQualifies implements spec §4.6's machine-type-to-role gate.
// OUTSOURCE operations are scheduled with no operator at all, so no role
// ever qualifies; INSPECT requires QualityInspector; everything else
// requires Operator or ShiftLead.
func roleQualifies(role entity.ResourceRole, machineType entity.MachineType) bool {
	switch machineType {
	case entity.MachineTypeOutsource:
		return false
	case entity.MachineTypeInspect:
		return role == entity.RoleQualityInspector
	default:
		return role == entity.RoleOperator || role == entity.RoleShiftLead
	}
}

// skillsSatisfied reports whether operatorSkills covers every required
// skill under a case-insensitive substring match in either direction: a
// required skill is satisfied if it appears as a substring of an operator
// skill, or an operator skill appears as a substring of it. The asymmetry
// is deliberate (spec §4.6) — it lets a broad tag like "cnc_operation"
// satisfy a narrower requirement like "CNC", at the cost of also letting
// an overly narrow operator tag satisfy an unrelated broader requirement.
func skillsSatisfied(operatorSkills, required []string) bool {
	for _, req := range required {
		if !anySkillMatches(operatorSkills, req) {
			return false
		}
	}
	return true
}

func anySkillMatches(operatorSkills []string, required string) bool {
	req := strings.ToLower(required)
	for _, s := range operatorSkills {
		skill := strings.ToLower(s)
		if strings.Contains(req, skill) || strings.Contains(skill, req) {
			return true
		}
	}
	return false
}
