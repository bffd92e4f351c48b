package feed

import (
	"fmt"
	"strings"

	"github.com/medirent/opsdesk/internal/domain"
)

// TypeSet is the set of task types an aggregation includes.
type TypeSet map[domain.TaskType]struct{}

// Contains reports whether t is in the set.
func (s TypeSet) Contains(t domain.TaskType) bool {
	_, ok := s[t]
	return ok
}

// ContainsAny reports whether any of the given types is in the set.
func (s TypeSet) ContainsAny(types []domain.TaskType) bool {
	for _, t := range types {
		if s.Contains(t) {
			return true
		}
	}
	return false
}

// groupAliases maps the filter group names exposed by the query facade to
// the task types they cover. Every task type belongs to exactly one group.
var groupAliases = map[string][]domain.TaskType{
	"tasks":        {domain.TaskTypeManual},
	"diagnostics":  {domain.TaskTypeDiagnosticPending},
	"appointments": {domain.TaskTypeAppointmentReminder},
	"rentals": {
		domain.TaskTypeRentalExpiring,
		domain.TaskTypeRentalAlert,
		domain.TaskTypeRentalTitration,
		domain.TaskTypeRentalAppointment,
	},
	"payments": {
		domain.TaskTypePaymentDue,
		domain.TaskTypePaymentPeriodEnd,
	},
	"sales": {
		domain.TaskTypeSaleRappel2Years,
		domain.TaskTypeSaleRappel7Years,
		domain.TaskTypeMaintenanceDue,
	},
	"cnam": {domain.TaskTypeCNAMRenewal},
}

// ParseTypeFilter resolves a filter string into the set of task types it
// selects. Accepted values: "all" (or empty), a group alias ("rentals",
// "payments", ...), or an explicit task type name ("PAYMENT_DUE").
// Unknown values reject the whole request with ErrInvalidFilter; there is
// no fallback to "all".
func ParseTypeFilter(filter string) (TypeSet, error) {
	normalized := strings.ToLower(strings.TrimSpace(filter))

	if normalized == "" || normalized == "all" {
		return allTypes(), nil
	}

	if types, ok := groupAliases[normalized]; ok {
		return newTypeSet(types), nil
	}

	taskType := domain.TaskType(strings.ToUpper(normalized))
	if domain.IsValidTaskType(taskType) {
		return newTypeSet([]domain.TaskType{taskType}), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
}

func newTypeSet(types []domain.TaskType) TypeSet {
	set := make(TypeSet, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func allTypes() TypeSet {
	return newTypeSet(domain.AllTaskTypes)
}
