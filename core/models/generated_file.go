package models

// GeneratedFile is one output of a generation pass. Previous is the content
// found on disk before the file was written, nil when it did not exist.
type GeneratedFile struct {
	Path     string
	Content  string
	Previous *string
}
