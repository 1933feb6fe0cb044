package domain

// LocalAuthor is the author name under which the single local user posts.
const LocalAuthor = "You"

// User is the fixed local identity. There is no login; every session is
// this user.
type User struct {
	Name     string `json:"username"`
	Initials string `json:"initials"`
}

var LocalUser = User{
	Name:     LocalAuthor,
	Initials: "YO",
}
