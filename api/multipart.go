package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
)

// File is an upload held in memory so requests can be replayed.
type File struct {
	Name    string
	Content []byte
}

func ReadFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{Name: filepath.Base(path), Content: content}, nil
}

type multipartBody struct {
	data        []byte
	contentType string
}

type multipartBuilder struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newMultipart() *multipartBuilder {
	b := &multipartBuilder{}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

// jsonPart adds a part with an application/json content type, which the
// backend reads as a request body.
func (b *multipartBuilder) jsonPart(name string, payload any) *multipartBuilder {
	if b.err != nil {
		return b
	}
	data, err := json.Marshal(payload)
	if err != nil {
		b.err = err
		return b
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, name))
	header.Set("Content-Type", "application/json")
	part, err := b.writer.CreatePart(header)
	if err != nil {
		b.err = err
		return b
	}
	_, b.err = part.Write(data)
	return b
}

func (b *multipartBuilder) filePart(name string, file *File) *multipartBuilder {
	if b.err != nil || file == nil {
		return b
	}
	part, err := b.writer.CreateFormFile(name, file.Name)
	if err != nil {
		b.err = err
		return b
	}
	_, b.err = part.Write(file.Content)
	return b
}

func (b *multipartBuilder) build() (*multipartBody, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.writer.Close(); err != nil {
		return nil, err
	}
	return &multipartBody{data: b.buf.Bytes(), contentType: b.writer.FormDataContentType()}, nil
}
