package request

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/GriffinCanCode/restmanager/internal/rest/params"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	contentTypeOctetStream = "application/octet-stream"
	contentTypeForm        = "application/x-www-form-urlencoded"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// BodyKind identifies how a descriptor carries its body
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyBytes
	BodyStream
	BodyMultipart
)

// String returns the string representation of the body kind
func (k BodyKind) String() string {
	switch k {
	case BodyNone:
		return "none"
	case BodyBytes:
		return "bytes"
	case BodyStream:
		return "stream"
	case BodyMultipart:
		return "multipart"
	default:
		return "unknown"
	}
}

// Payload is a raw request body handed to Builder.Payload untouched.
type Payload struct {
	kind        BodyKind
	data        []byte
	stream      io.Reader
	size        int64
	contentType string
	form        *Form
}

// Bytes wraps an in-memory body. An empty contentType is sniffed from data.
func Bytes(data []byte, contentType string) Payload {
	return Payload{kind: BodyBytes, data: data, size: int64(len(data)), contentType: contentType}
}

// Stream wraps a reader of known size, or -1 when unknown
func Stream(r io.Reader, size int64, contentType string) Payload {
	if size < 0 {
		size = -1
	}
	return Payload{kind: BodyStream, stream: r, size: size, contentType: contentType}
}

// MultipartForm wraps a multipart/form-data body
func MultipartForm(form *Form) Payload {
	return Payload{kind: BodyMultipart, form: form}
}

// Kind returns the payload kind
func (p Payload) Kind() BodyKind {
	return p.kind
}

// resolveContentType picks the Content-Type header for a bytes or stream body
func (p Payload) resolveContentType() string {
	if p.contentType != "" {
		return p.contentType
	}
	if p.kind == BodyBytes && len(p.data) > 0 {
		return mimetype.Detect(p.data).String()
	}
	return contentTypeOctetStream
}

// FilePart is one file inside a multipart form
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// Form is an ordered multipart/form-data body
type Form struct {
	Fields []params.Pair
	Files  []FilePart
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{}
}

// AddField appends a plain form field
func (f *Form) AddField(name, value string) *Form {
	f.Fields = append(f.Fields, params.Pair{Name: name, Value: value})
	return f
}

// AddFile appends a file part; its content type is sniffed when empty
func (f *Form) AddFile(field, fileName string, data []byte) *Form {
	f.Files = append(f.Files, FilePart{Field: field, FileName: fileName, Data: data})
	return f
}

// render writes the form and returns the body and its Content-Type
func (f *Form) render() ([]byte, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.SetBoundary("restmanager-" + uuid.NewString()); err != nil {
		return nil, "", fmt.Errorf("set boundary: %w", err)
	}

	if f != nil {
		for _, field := range f.Fields {
			if err := writer.WriteField(field.Name, field.Value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", field.Name, err)
			}
		}

		for _, file := range f.Files {
			ct := file.ContentType
			if ct == "" {
				ct = mimetype.Detect(file.Data).String()
			}

			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.FileName)))
			h.Set("Content-Type", ct)

			part, err := writer.CreatePart(h)
			if err != nil {
				return nil, "", fmt.Errorf("create file part %s: %w", file.Field, err)
			}
			if _, err := part.Write(file.Data); err != nil {
				return nil, "", fmt.Errorf("write file part %s: %w", file.Field, err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}
