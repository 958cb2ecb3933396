package watcher

// ReloadDecision describes how the application should react to a
// change event
type ReloadDecision struct {
	Reload       bool
	Reason       string
	ChangedFiles []string
}

// PlanReload decides whether a change event warrants re-reading the
// document. A removed document is never reloaded; the last good copy
// stays on screen until the file comes back.
func PlanReload(event ChangeEvent) *ReloadDecision {
	decision := &ReloadDecision{
		ChangedFiles: event.Paths,
	}

	if event.Removed {
		decision.Reason = "document removed, keeping last loaded copy"
		return decision
	}

	decision.Reload = true
	decision.Reason = "document changed on disk"
	return decision
}
