package layout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Role names the typographic use of a font inside a card
type Role string

const (
	RoleTitle Role = "title"
	RoleText  Role = "text"
)

// FontSet holds the fonts used to measure and draw card text.
// It is passed explicitly to layout and rendering; there is no package-level font state.
type FontSet struct {
	fonts map[Role]*opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	role Role
	size float64
}

var embedded = map[Role][]byte{
	RoleTitle: gobold.TTF,
	RoleText:  goregular.TTF,
}

// DefaultFontSet returns a FontSet built from the embedded Go fonts
func DefaultFontSet() *FontSet {
	fs, _ := LoadFontSet(nil)
	return fs
}

// LoadFontSet parses the font file configured for each role.
// A role whose file is unset, unreadable or not a valid font falls back to the
// embedded Go font; each fallback is returned as a warning.
func LoadFontSet(paths map[Role]string) (*FontSet, []string) {
	fs := &FontSet{
		fonts: make(map[Role]*opentype.Font, len(embedded)),
		faces: make(map[faceKey]font.Face),
	}

	var warnings []string
	for _, role := range []Role{RoleTitle, RoleText} {
		fallback := embedded[role]
		path := paths[role]
		if path != "" {
			f, err := parseFile(path)
			if err == nil {
				fs.fonts[role] = f
				continue
			}
			warnings = append(warnings, fmt.Sprintf("%s font %q unavailable, using default: %v", role, path, err))
		}

		f, err := opentype.Parse(fallback)
		if err != nil {
			// embedded fonts are known to parse
			panic(fmt.Sprintf("parse embedded %s font: %v", role, err))
		}
		fs.fonts[role] = f
	}

	return fs, warnings
}

func parseFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

// Face returns a face for the role at the given pixel size. Unknown roles use the text font.
func (fs *FontSet) Face(role Role, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %.1f", size)
	}
	if _, ok := fs.fonts[role]; !ok {
		role = RoleText
	}

	key := faceKey{role: role, size: size}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if face, ok := fs.faces[key]; ok {
		return face, nil
	}

	face, err := opentype.NewFace(fs.fonts[role], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s face at %.1fpx: %w", role, size, err)
	}
	fs.faces[key] = face
	return face, nil
}
