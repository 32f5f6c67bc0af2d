package httpapi

// uploadChunkForm is the multipart DTO for the uploadChunk endpoint,
// decoded and validated through the form package's struct-tag rules.
// The chunk's raw bytes are not part of this struct: they arrive as a
// multipart file part and are read separately via r.FormFile.
type uploadChunkForm struct {
	UploadID      string `form:"upload_id" validate:"required,uuid4"`
	ChunkIndex    int    `form:"chunk_index" validate:"required,min=0"`
	TotalChunks   int    `form:"total_chunks" validate:"required,min=1"`
	ChunkChecksum string `form:"chunk_checksum" validate:"required,hex_md5"`
	FileName      string `form:"file_name"`
	FileSize      int64  `form:"file_size"`
	MimeType      string `form:"mime_type"`
}

// completeUploadRequest is the JSON body for the completeUpload endpoint.
type completeUploadRequest struct {
	UploadID     string `json:"upload_id"`
	FileChecksum string `json:"file_checksum"`
}

// attachToProductRequest is the JSON body for the attachToProduct endpoint.
type attachToProductRequest struct {
	UploadID  string `json:"upload_id"`
	SKU       string `json:"sku"`
	IsPrimary bool   `json:"is_primary"`
}
