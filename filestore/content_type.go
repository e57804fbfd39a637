package filestore

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ContentTypeOctetStream is the fallback content type.
const ContentTypeOctetStream = "application/octet-stream"

// DetectContentType picks a content type for an upload. A declared type other than the generic
// octet-stream wins; otherwise the extension of filename is consulted and finally the content
// is sniffed.
func DetectContentType(declared, filename string, body []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != ContentTypeOctetStream {
		return declared
	}

	if i := strings.LastIndex(filename, "."); i > 0 {
		if byExt := mime.TypeByExtension(filename[i:]); byExt != "" {
			return byExt
		}
	}

	return mimetype.Detect(body).String()
}
