package template

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcanaland/cardpress/internal/card"
)

var ErrAssetNotFound = errors.New("asset not found")

// Assets resolves a record's background reference to an absolute file path
type Assets interface {
	Resolve(category card.Category, ref string) (string, error)
}

// DirAssets looks backgrounds up under Root/<category>/ first, then under Root/
type DirAssets struct {
	Root string
}

// Resolve returns the absolute path of the first existing candidate file
func (a DirAssets) Resolve(category card.Category, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrAssetNotFound)
	}

	var candidates []string
	if filepath.IsAbs(ref) {
		candidates = append(candidates, ref)
	}

	// references such as "/images/bonus/B1.png" are relative to the asset root
	rel := filepath.FromSlash(strings.TrimLeft(filepath.ToSlash(ref), "/"))
	if a.Root != "" {
		candidates = append(candidates,
			filepath.Join(a.Root, string(category), rel),
			filepath.Join(a.Root, rel),
			filepath.Join(a.Root, string(category), filepath.Base(rel)),
		)
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		return abs, nil
	}

	return "", fmt.Errorf("%w: %s", ErrAssetNotFound, ref)
}
