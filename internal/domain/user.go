package domain

// User is the account payload returned by the user service on signup and login.
type User struct {
	UserID   string `json:"userId"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
}

// CiToken is a long-lived bearer token scoped to a single task.
type CiToken struct {
	Token string `json:"token"`
}
