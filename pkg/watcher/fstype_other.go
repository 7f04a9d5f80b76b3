//go:build !linux

package watcher

// DetectFilesystemType has no statfs magic table outside Linux.
func DetectFilesystemType(path string) FilesystemType {
	if path == "" {
		return FSTypeUnknown
	}
	return FSTypeLocal
}
