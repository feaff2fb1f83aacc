package models

// DocMetadata describes where a piece of text came from.
type DocMetadata struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Page   *int   `json:"page,omitempty"`
}

// Document is a single retrievable unit of text produced by the loader.
// TXT files yield one Document; PDF files yield one Document per page.
type Document struct {
	Text     string      `json:"text"`
	Metadata DocMetadata `json:"metadata"`
}

// Chunk is a bounded slice of a Document's text. Chunks are the atomic
// unit stored in the vector index; metadata is inherited from the parent
// Document.
type Chunk struct {
	Text     string      `json:"text"`
	Metadata DocMetadata `json:"metadata"`
}

// SourceDocument is a chunk re-exposed as a citation in a chat response.
type SourceDocument struct {
	Source      string `json:"source"`
	PageContent string `json:"page_content"`
	Page        *int   `json:"page,omitempty"`
	Type        string `json:"type,omitempty"`
}
