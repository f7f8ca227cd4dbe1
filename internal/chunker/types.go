package chunker

type ChunkOptions struct {
	MaxTokens       int
	OverlapTokens   int
	PreserveHeaders bool
}

type Section struct {
	Title   string
	Level   int
	Content string
}

// one embeddable piece of a document
type Chunk struct {
	Index        int
	SectionTitle string
	Content      string
}
