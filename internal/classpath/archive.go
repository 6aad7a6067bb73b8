package classpath

import (
	"archive/zip"
	"io"
)

// ArchiveProvider resolves a class name against entries named
// "pkg/sub/Name.class" inside a zip-format (JAR) container. The
// central directory is parsed once on open and cached for the life of
// the provider, mirroring Jacobin's per-classloader Archives cache.
type ArchiveProvider struct {
	path    string
	reader  *zip.ReadCloser
	byName  map[string]*zip.File
}

// NewArchiveProvider opens a JAR/zip file and indexes its entries by
// name for fast repeated lookup.
func NewArchiveProvider(path string) (*ArchiveProvider, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		byName[f.Name] = f
	}
	return &ArchiveProvider{path: path, reader: r, byName: byName}, nil
}

// Close releases the underlying archive file handle.
func (a *ArchiveProvider) Close() error { return a.reader.Close() }

func (a *ArchiveProvider) Lookup(className string) ([]byte, bool, error) {
	entry, ok := a.byName[className+".class"]
	if !ok {
		return nil, false, nil
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// MainClass returns the Main-Class attribute from META-INF/MANIFEST.MF,
// if present, mirroring Jacobin's Archive.getMainClass().
func (a *ArchiveProvider) MainClass() (string, bool, error) {
	entry, ok := a.byName["META-INF/MANIFEST.MF"]
	if !ok {
		return "", false, nil
	}
	rc, err := entry.Open()
	if err != nil {
		return "", false, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", false, err
	}
	return parseManifestMainClass(data)
}

func parseManifestMainClass(manifest []byte) (string, bool, error) {
	lines := splitManifestLines(string(manifest))
	const prefix = "Main-Class:"
	for _, line := range lines {
		if len(line) > len(prefix) && line[:len(prefix)] == prefix {
			name := line[len(prefix):]
			return trimSpaces(name), true, nil
		}
	}
	return "", false, nil
}

func splitManifestLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			line := s[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func trimSpaces(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
