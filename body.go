package requesty

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/Laisky/errors/v2"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Body is a request payload. The variants are JSONBody, RawBody and FormBody;
// a nil Body sends nothing.
type Body interface {
	encode() (data []byte, contentType string, err error)
}

type jsonBody struct {
	value any
}

// JSONBody serializes value as JSON and sends it with an application/json
// content type.
func JSONBody(value any) Body {
	return jsonBody{value: value}
}

func (b jsonBody) encode() ([]byte, string, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return nil, "", errors.Wrap(err, "encode json body")
	}
	return data, contentTypeJSON, nil
}

type rawBody struct {
	data        []byte
	contentType string
}

// RawBody sends data unchanged. An empty contentType sends no Content-Type
// header at all.
func RawBody(data []byte, contentType string) Body {
	return rawBody{data: data, contentType: contentType}
}

func (b rawBody) encode() ([]byte, string, error) {
	return b.data, b.contentType, nil
}

// FormFile is a file part of a multipart form.
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

type formBody struct {
	fields map[string]string
	files  []FormFile
}

// FormBody builds a multipart/form-data payload. Its boundary content type
// replaces any default Content-Type header.
func FormBody(fields map[string]string, files ...FormFile) Body {
	return formBody{fields: fields, files: files}
}

func (b formBody) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(b.fields))
	for key := range b.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := writer.WriteField(key, b.fields[key]); err != nil {
			return nil, "", errors.Wrapf(err, "write form field %q", key)
		}
	}

	for _, file := range b.files {
		part, err := createFilePart(writer, file)
		if err != nil {
			return nil, "", errors.Wrapf(err, "create form file %q", file.Field)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", errors.Wrapf(err, "write form file %q", file.Field)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func createFilePart(writer *multipart.Writer, file FormFile) (io.Writer, error) {
	if file.ContentType == "" {
		return writer.CreateFormFile(file.Field, file.Filename)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Filename)))
	header.Set(headerContentType, file.ContentType)
	return writer.CreatePart(header)
}
