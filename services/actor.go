package services

// Actor is the authenticated admin performing a write.
type Actor struct {
	UserID uint
}

// valid reports whether the actor carries an identity.
func (a Actor) valid() bool {
	return a.UserID != 0
}
