package drive

// Photo is a single image file in the configured folder. Identity lives in
// the external folder source; nothing here is persisted.
type Photo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType,omitempty"`
}

// FolderInfo identifies a browsable folder.
type FolderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
