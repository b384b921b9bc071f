package preview

import (
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/arcanaland/cardpress/internal/util"
)

// GetCacheDir returns $XDG_CACHE_HOME/cardpress/ansi_cache, or the user cache dir equivalent
func GetCacheDir() string {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "cardpress", "ansi_cache")
		}
		base = dir
	}
	return filepath.Join(base, "cardpress", "ansi_cache")
}

// Cache keeps ANSI renditions of card images keyed by path, modification time and size
type Cache struct {
	Dir string
}

// Get returns the ANSI art of the image at path, generating and storing it on a miss
func (c Cache) Get(imagePath string, width int, trueColor bool) (string, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %v", err)
	}

	key := fmt.Sprintf("%s|%d|%d|%d|%t", imagePath, info.ModTime().UnixNano(), info.Size(), width, trueColor)
	cachePath := filepath.Join(c.Dir, fmt.Sprintf("%x.ansi", md5.Sum([]byte(key))))

	if data, err := os.ReadFile(cachePath); err == nil {
		return string(data), nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}

	w, h := Size(img.Bounds(), width)
	art, err := ImageToAnsi(img, w, h, trueColor)
	if err != nil {
		return "", fmt.Errorf("failed to convert image to ANSI: %v", err)
	}

	if err := util.EnsureDir(c.Dir); err != nil {
		return "", fmt.Errorf("failed to create ANSI cache directory: %v", err)
	}
	if err := util.WriteFileAtomic(cachePath, []byte(art)); err != nil {
		return "", fmt.Errorf("failed to write ANSI art to file: %v", err)
	}

	return art, nil
}
