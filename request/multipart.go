package request

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"

	"github.com/suredesigns/alier-node/apierror"
	"github.com/suredesigns/alier-node/internal/safejson"
)

// decodeMultipart parses an RFC 7578 multipart/form-data body into a map
// from part name to decoded value (spec.md §4.4): text/plain parts
// decode to a string, application/json parts parse to structured JSON,
// and everything else stays raw bytes. mime/multipart already performs
// the RFC 5322 header-line unfolding and boundary scanning the spec
// describes; reimplementing that scanner by hand over the standard
// library's own compliant implementation would be a regression, not an
// enrichment (see DESIGN.md).
func decodeMultipart(data []byte, boundary string) (map[string]any, error) {
	if boundary == "" {
		return nil, apierror.BadRequest("multipart/form-data: missing boundary parameter")
	}

	reader := multipart.NewReader(bytes.NewReader(data), boundary)
	result := make(map[string]any)

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierror.BadRequest("malformed multipart body: " + err.Error())
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			return nil, apierror.BadRequest("multipart part missing Content-Disposition form-data name")
		}

		value, err := decodePart(part)
		part.Close()
		if err != nil {
			return nil, err
		}
		result[name] = value
	}

	return result, nil
}

func decodePart(part *multipart.Part) (any, error) {
	body, err := io.ReadAll(part)
	if err != nil {
		return nil, apierror.BadRequest("failed to read multipart part: " + err.Error())
	}

	ct := part.Header.Get("Content-Type")
	mediaType, params, _ := mime.ParseMediaType(ct)

	switch {
	case mediaType == "" || mediaType == "text/plain":
		return decodeText(body, params["charset"])
	case mediaType == "application/json":
		v, err := safejson.Unmarshal(body)
		if err != nil {
			return nil, apierror.BadRequest("malformed JSON in multipart part: " + err.Error())
		}
		return v, nil
	default:
		return body, nil
	}
}
