package script

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/specialistvlad/animath/internal/render"
)

// Naming decides the artifact base name of each directive's render.
type Naming string

const (
	// NamingShared gives every directive render.DefaultName, so each render
	// overwrites the previous one and only the last directive survives.
	NamingShared Naming = "shared"
	// NamingIndex appends the 1-based directive ordinal: temp-1, temp-2, ...
	NamingIndex Naming = "index"
	// NamingHash appends a digest of the directive text, so unchanged
	// directives keep their file names when a script is edited.
	NamingHash Naming = "hash"
)

// DefaultNaming renders every directive as render.DefaultName.
const DefaultNaming = NamingShared

// Namings lists the accepted strategies.
func Namings() []Naming {
	return []Naming{NamingShared, NamingIndex, NamingHash}
}

// ParseNaming validates a strategy name. The empty string is DefaultNaming.
func ParseNaming(s string) (Naming, error) {
	switch n := Naming(strings.ToLower(strings.TrimSpace(s))); n {
	case "":
		return DefaultNaming, nil
	case NamingShared, NamingIndex, NamingHash:
		return n, nil
	default:
		return "", fmt.Errorf("unknown naming %q: must be one of %v", s, Namings())
	}
}

// Name returns the base name for the ordinal-th directive (1-based).
func (n Naming) Name(ordinal int, d Directive) string {
	switch n {
	case NamingShared:
		return render.DefaultName
	case NamingHash:
		return render.DefaultName + "-" + textID(d.Text)
	default:
		return fmt.Sprintf("%s-%d", render.DefaultName, ordinal)
	}
}

// textID derives a stable identifier from directive text.
func textID(text string) string {
	uid := uuid.NewSHA1(uuid.NameSpaceOID, []byte("animath:directive:"+text))
	return strings.ReplaceAll(uid.String(), "-", "")[:12]
}
