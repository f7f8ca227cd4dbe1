package retriever

const (
	// cosine distance, so similarity is 1 - distance
	vectorSearchQuery = `
		SELECT
			id::text,
			chunk_index,
			section_title,
			content,
			(1 - (embedding <=> $2))::real AS similarity
		FROM document_chunks
		WHERE file_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`

	keywordSearchQuery = `
		SELECT
			id::text,
			chunk_index,
			section_title,
			content,
			ts_rank(content_tsvector, websearch_to_tsquery('english', $2)) AS rank
		FROM document_chunks
		WHERE file_id = $1 AND content_tsvector @@ websearch_to_tsquery('english', $2)
		ORDER BY rank DESC
		LIMIT $3
	`
)
