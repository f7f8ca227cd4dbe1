package storage

const (
	insertChunkQuery = `
		INSERT INTO document_chunks (file_id, chunk_index, section_title, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`

	deleteFileChunksQuery = "DELETE FROM document_chunks WHERE file_id = $1"
	countFileChunksQuery  = "SELECT COUNT(*) FROM document_chunks WHERE file_id = $1"
)
