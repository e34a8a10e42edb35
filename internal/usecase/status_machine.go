package usecase

import (
	"placement-backoffice/internal/domain"
)

// statusRank orders the workflow states so "WORKER_ARRIVED or later" checks
// are explicit. Terminal cancellation states are intentionally absent.
var statusRank = map[domain.ApplicationStatus]int{
	domain.StatusPendingMOL:                0,
	domain.StatusMOLAuthReceived:           1,
	domain.StatusVisaProcessing:            2,
	domain.StatusVisaReceived:              3,
	domain.StatusWorkerArrived:             4,
	domain.StatusLabourPermitProcessing:    5,
	domain.StatusResidencyPermitProcessing: 6,
	domain.StatusActiveEmployment:          7,
	domain.StatusRenewalPending:            7, // renewal loops beside active employment
	domain.StatusContractEnded:             8,
}

// forwardTransitions is the legal status graph. Each state maps to the set
// of states it may move to; the renewal loop is an ordinary pair of edges,
// not a special case. Terminal states have no outgoing edges.
var forwardTransitions = map[domain.ApplicationStatus][]domain.ApplicationStatus{
	domain.StatusPendingMOL:                {domain.StatusMOLAuthReceived},
	domain.StatusMOLAuthReceived:           {domain.StatusVisaProcessing},
	domain.StatusVisaProcessing:            {domain.StatusVisaReceived},
	domain.StatusVisaReceived:              {domain.StatusWorkerArrived},
	domain.StatusWorkerArrived:             {domain.StatusLabourPermitProcessing},
	domain.StatusLabourPermitProcessing:    {domain.StatusResidencyPermitProcessing},
	domain.StatusResidencyPermitProcessing: {domain.StatusActiveEmployment},
	domain.StatusActiveEmployment:          {domain.StatusRenewalPending, domain.StatusContractEnded},
	domain.StatusRenewalPending:            {domain.StatusActiveEmployment, domain.StatusContractEnded},
}

func canTransition(from, to domain.ApplicationStatus) bool {
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AdvanceApplication validates and applies a single forward step of the
// workflow, mutating app's status and date fields on success. Skips are
// rejected; three transitions require a date captured from a physical
// document; entering WORKER_ARRIVED or later requires the current stage's
// documents to be complete.
func AdvanceApplication(app *domain.Application, target domain.ApplicationStatus, dates domain.StatusDates, docs []domain.DocumentChecklistItem) error {
	if !canTransition(app.Status, target) {
		return &domain.InvalidTransitionError{From: app.Status, To: target}
	}

	switch target {
	case domain.StatusWorkerArrived:
		if dates.ExactArrivalDate == nil && app.ExactArrivalDate == nil {
			return &domain.MissingRequiredDateError{Target: target, Field: "exact_arrival_date"}
		}
	case domain.StatusLabourPermitProcessing:
		if dates.LaborPermitDate == nil && app.LaborPermitDate == nil {
			return &domain.MissingRequiredDateError{Target: target, Field: "labor_permit_date"}
		}
	case domain.StatusResidencyPermitProcessing:
		if dates.ResidencyPermitDate == nil && app.ResidencyPermitDate == nil {
			return &domain.MissingRequiredDateError{Target: target, Field: "residency_permit_date"}
		}
	}

	if statusRank[target] >= statusRank[domain.StatusWorkerArrived] {
		var missing []string
		for _, doc := range docs {
			if doc.Stage == app.Status && !doc.IsComplete() {
				missing = append(missing, doc.Name)
			}
		}
		if len(missing) > 0 {
			return &domain.DocumentsIncompleteError{Missing: missing}
		}
	}

	if dates.ExactArrivalDate != nil {
		app.ExactArrivalDate = dates.ExactArrivalDate
	}
	if dates.LaborPermitDate != nil {
		app.LaborPermitDate = dates.LaborPermitDate
	}
	if dates.ResidencyPermitDate != nil {
		app.ResidencyPermitDate = dates.ResidencyPermitDate
	}
	app.Status = target
	return nil
}

// CancelInto moves an application into a cancellation terminal. This is the
// only path into a CANCELLED_* state and is reserved for the cancellation
// processor; terminal states are absorbing.
func CancelInto(app *domain.Application, terminal domain.ApplicationStatus) error {
	if app.Status.IsTerminal() {
		return &domain.IllegalCancellationError{Status: app.Status}
	}
	if !terminal.IsCancelled() {
		return &domain.InvalidTransitionError{From: app.Status, To: terminal}
	}
	app.Status = terminal
	return nil
}
