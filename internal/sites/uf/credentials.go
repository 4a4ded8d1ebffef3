package uf

// Credentials is a GatorLink username and password. It never prints the
// password, so it is safe to pass to a logger by mistake.
type Credentials struct {
	username string
	password string
}

// NewCredentials creates credentials
func NewCredentials(username, password string) Credentials {
	return Credentials{username: username, password: password}
}

// Username returns the username
func (c Credentials) Username() string { return c.username }

// Empty reports whether either part is missing
func (c Credentials) Empty() bool { return c.username == "" || c.password == "" }

func (c Credentials) String() string {
	if c.username == "" {
		return "credentials(none)"
	}
	return "credentials(" + c.username + ", password redacted)"
}

// GoString keeps %#v from printing the password
func (c Credentials) GoString() string { return c.String() }
