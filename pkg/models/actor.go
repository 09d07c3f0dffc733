package models

// Actor is the authenticated caller of a mutating operation. It is threaded
// explicitly into every workflow call so authorization decisions are
// testable without a fake session.
type Actor struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Elevated bool   `json:"elevated"`
}

// CanEdit reports whether the actor may update a workflow created by
// createdBy. Elevated actors may edit any workflow.
func (a Actor) CanEdit(createdBy string) bool {
	return a.Elevated || a.ID == createdBy
}
