// Package templates loads the notification email templates and fills their
// {{PLACEHOLDER}} tokens.
package templates

import (
	"embed"
	"io/fs"
	"os"

	"lavishtravels/internal/logger"
)

const (
	SupportEmail          = "support_email.html"
	UserConfirmationEmail = "user_confirmation_email.html"
)

// Fallback is returned in place of a template that cannot be read.
const Fallback = `
<html>
<body>
<h1>Email Template Error</h1>
<p>There was an error loading the email template. Please contact support.</p>
</body>
</html>
`

//go:embed html/*.html
var embedded embed.FS

// Store reads templates by name. Nothing is cached: every Load reads from the
// underlying filesystem again.
type Store struct {
	fsys fs.FS
}

// NewStore returns a Store over fsys.
func NewStore(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

// NewEmbeddedStore returns a Store over the templates compiled into the binary.
func NewEmbeddedStore() *Store {
	sub, err := fs.Sub(embedded, "html")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return NewStore(sub)
}

// NewStoreFromConfig uses dir when set and the embedded templates otherwise.
func NewStoreFromConfig(dir string) *Store {
	if dir == "" {
		return NewEmbeddedStore()
	}
	return NewStore(os.DirFS(dir))
}

// Load returns the named template, or Fallback when it is missing or unreadable.
func (s *Store) Load(name string) string {
	b, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		logger.Named("templates").Error("template load failed, using fallback",
			logger.String("template", name),
			logger.Err(err),
		)
		return Fallback
	}
	return string(b)
}
