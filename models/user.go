package models

// User is a demo account record stored under user/<id>. Its Email is
// indexed by user_by_email/<email> which always resolves back to ID.
type User struct {
	// ID is the caller supplied identifier and the primary key.
	ID string `json:"id"`

	// Email is unique among users; lookups by email go through the index.
	Email string `json:"email"`

	Name string `json:"name"`

	// Password is stored exactly as given.
	Password string `json:"password"`
}

// Address is the child record of a [User], stored under user_address/<id>.
type Address struct {
	City   string `json:"city"`
	Street string `json:"street"`
}
