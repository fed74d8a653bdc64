package domain

import "portal/persistence"

func init() {
	persistence.RegisterEntities(&Project{}, &Phase{}, &Deliverable{}, &Approval{}, &Message{})
}
