package loaders

import (
	"fmt"

	"github.com/spaghettifunk/panelpop/engine/resources"
)

// BinaryLoader reads raw asset bytes.
type BinaryLoader struct {
	Root string
}

var _ resources.Loader[string, []byte] = (*BinaryLoader)(nil)

func (bl *BinaryLoader) Load(path string) ([]byte, error) {
	buf, fullPath, err := readFile(bl.Root, path)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("binary asset '%s' is empty", fullPath)
	}
	return buf, nil
}
