package httpapi

import "regexp"

// uuid4Regex and hexMD5Regex mirror the format rules registered as the
// form package's uuid4/hex_md5 validators. The JSON-body handlers
// decode with encoding/json and do not go through the form package, so
// the same shape checks are applied directly here.
var (
	uuid4Regex  = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	hexMD5Regex = regexp.MustCompile(`^[0-9a-f]{32}$`)
	skuRegex    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func validateCompleteUploadRequest(req completeUploadRequest) map[string][]string {
	fields := map[string][]string{}
	if !uuid4Regex.MatchString(req.UploadID) {
		fields["upload_id"] = []string{"Must be a lowercase UUIDv4"}
	}
	if !hexMD5Regex.MatchString(req.FileChecksum) {
		fields["file_checksum"] = []string{"Must be a lowercase hex MD5 digest"}
	}
	return fields
}

func validateAttachToProductRequest(req attachToProductRequest) map[string][]string {
	fields := map[string][]string{}
	if !uuid4Regex.MatchString(req.UploadID) {
		fields["upload_id"] = []string{"Must be a lowercase UUIDv4"}
	}
	if !skuRegex.MatchString(req.SKU) {
		fields["sku"] = []string{"Required, alphanumeric/dash/underscore, max 64 characters"}
	}
	return fields
}
