package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	imagepkg "github.com/youruser/cardinserts/internal/image"
)

// LoadArtifacts collects the PNG inserts already saved in dir so a document
// can be rebuilt without compositing again. Files are ordered by their
// numeric name; if any name is not a number the whole set is ordered by
// name instead and indices follow that order.
func LoadArtifacts(dir string) ([]imagepkg.Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inserts: %w", err)
	}

	var arts []imagepkg.Artifact
	numeric := true
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		key := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		n, err := strconv.Atoi(key)
		if err != nil {
			numeric = false
		}
		arts = append(arts, imagepkg.Artifact{Index: n, Key: key, Path: filepath.Join(dir, e.Name())})
	}
	if len(arts) == 0 {
		return nil, ErrEmptyInput
	}

	if numeric {
		sort.SliceStable(arts, func(i, j int) bool { return arts[i].Index < arts[j].Index })
		return arts, nil
	}
	sort.Slice(arts, func(i, j int) bool { return arts[i].Key < arts[j].Key })
	for i := range arts {
		arts[i].Index = i + 1
	}
	return arts, nil
}
