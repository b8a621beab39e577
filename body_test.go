package requesty

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBody(t *testing.T) {
	data, contentType, err := JSONBody(map[string]any{"a": 1}).encode()

	require.NoError(t, err)
	assert.Equal(t, contentTypeJSON, contentType)
	assert.JSONEq(t, `{"a":1}`, string(data))
}

func TestJSONBodyEncodeFailure(t *testing.T) {
	_, _, err := JSONBody(map[string]any{"ch": make(chan int)}).encode()
	assert.Error(t, err)
}

func TestRawBody(t *testing.T) {
	data, contentType, err := RawBody([]byte("hello"), contentTypePlain).encode()

	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, contentTypePlain, contentType)

	_, contentType, err = RawBody([]byte{0x01}, "").encode()
	require.NoError(t, err)
	assert.Empty(t, contentType)
}

func TestFormBody(t *testing.T) {
	body := FormBody(
		map[string]string{"name": "report", "kind": "csv"},
		FormFile{Field: "file", Filename: "report.csv", ContentType: "text/csv", Content: []byte("a,b\n1,2\n")},
		FormFile{Field: "extra", Filename: "blob.bin", Content: []byte{0x00, 0x01}},
	)

	data, contentType, err := body.encode()
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
	require.NotEmpty(t, params["boundary"])

	reader := multipart.NewReader(bytes.NewReader(data), params["boundary"])
	parts := map[string]string{}
	types := map[string]string{}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(part)
		require.NoError(t, err)
		parts[part.FormName()] = string(content)
		types[part.FormName()] = part.Header.Get(headerContentType)
	}

	assert.Equal(t, "report", parts["name"])
	assert.Equal(t, "csv", parts["kind"])
	assert.Equal(t, "a,b\n1,2\n", parts["file"])
	assert.Equal(t, "text/csv", types["file"])
	assert.Equal(t, "application/octet-stream", types["extra"])
}

func TestFormBodyTypedFileEscapesDisposition(t *testing.T) {
	body := FormBody(nil, FormFile{
		Field:       `up"load`,
		Filename:    `q"uo\te.json`,
		ContentType: contentTypeJSON,
		Content:     []byte(`{"a":1}`),
	})

	data, contentType, err := body.encode()
	require.NoError(t, err)
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)

	part, err := multipart.NewReader(bytes.NewReader(data), params["boundary"]).NextPart()
	require.NoError(t, err)
	assert.Equal(t, `up"load`, part.FormName())
	assert.Equal(t, `q"uo\te.json`, part.FileName())
	assert.Equal(t, contentTypeJSON, part.Header.Get(headerContentType))
	assert.Equal(t, `form-data; name="up\"load"; filename="q\"uo\\te.json"`, part.Header.Get("Content-Disposition"))

	content, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(content))
}
