package classpath

import (
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
)

// DirProvider resolves a class name against "<root>/pkg/sub/Name.class"
// on the local filesystem. Files are memory-mapped read-only, the
// pattern saferwall/pe uses for PE binaries, and the mapped bytes are
// then copied into a fresh slice and the mapping released — the
// returned slice is a heap copy, not a view onto the mapping.
type DirProvider struct {
	Root string
}

// NewDirProvider returns a directory-backed class path entry rooted at
// root.
func NewDirProvider(root string) *DirProvider {
	return &DirProvider{Root: root}
}

func (d *DirProvider) Lookup(className string) ([]byte, bool, error) {
	path := filepath.Join(d.Root, filepath.FromSlash(className)+".class")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, err
	}
	if info.Size() == 0 {
		return []byte{}, true, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, false, err
	}
	// Copy out of the mapping before it's any chance of being
	// unmapped by the caller; the decoder only needs a read-only view
	// for the duration of one Decode call, but keeping the mapping
	// alive for the VM's whole lifetime would pin one fd per loaded
	// class, which isn't worth it for a bump-allocated, never-unloaded
	// method area.
	data := make([]byte, len(m))
	copy(data, m)
	if err := m.Unmap(); err != nil {
		return nil, false, err
	}
	return data, true, nil
}
