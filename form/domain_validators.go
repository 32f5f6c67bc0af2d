package form

import "regexp"

var (
	uuid4Regex   = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	hexMD5Regex  = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

const (
	ErrInvalidUUID4  = "Must be a lowercase UUIDv4"
	ErrInvalidHexMD5 = "Must be a lowercase hex MD5 digest"
)

// uuid4 and hex_md5 are registered here rather than in form.go's
// built-in init() since they are specific to the upload_id / checksum
// fields this service's request DTOs validate.
func init() {
	RegisterValidator("uuid4", func(value string) string {
		if value == "" {
			return ""
		}
		if !uuid4Regex.MatchString(value) {
			return ErrInvalidUUID4
		}
		return ""
	})

	RegisterValidator("hex_md5", func(value string) string {
		if value == "" {
			return ""
		}
		if !hexMD5Regex.MatchString(value) {
			return ErrInvalidHexMD5
		}
		return ""
	})
}
