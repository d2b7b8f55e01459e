package request

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/textproto"

	"github.com/nyris/nyris-go/internal/domain/matching/filter"
)

// Content types.
const (
	ContentTypeImage = "image/jpg"
	ContentTypeText  = "text/plain; charset=utf-8"
	ContentTypeJSON  = "application/json"

	imagePartName     = "image"
	imagePartFilename = "image.jpg"
	imagePartType     = "image/jpeg"
)

// Body is an encoded request payload.
type Body struct {
	ContentType string
	Data        []byte
}

// Empty is the body of requests without payload.
func Empty() Body { return Body{} }

// Image wraps raw image bytes.
func Image(img []byte) Body {
	return Body{ContentType: ContentTypeImage, Data: img}
}

// Text wraps a UTF-8 keyword query.
func Text(s string) Body {
	return Body{ContentType: ContentTypeText, Data: []byte(s)}
}

// JSON encodes v.
func JSON(v any) (Body, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Body{}, fmt.Errorf("encode json body: %w", err)
	}
	return Body{ContentType: ContentTypeJSON, Data: data}, nil
}

type vectorPayload struct {
	B64 string `json:"b64"`
}

// Vector encodes a feature vector as {"b64": base64(little-endian float32)}.
func Vector(v []float32) (Body, error) {
	return JSON(vectorPayload{B64: EncodeVector(v)})
}

// EncodeVector returns the base64 of v as consecutive little-endian float32.
func EncodeVector(v []float32) string {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(s string) ([]float32, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("decode vector: %d bytes is not a multiple of 4", len(buf))
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return out, nil
}

// Multipart encodes the image part followed by the filter fields.
func Multipart(img []byte, filters filter.List) (Body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, imagePartName, imagePartFilename))
	h.Set("Content-Type", imagePartType)
	part, err := w.CreatePart(h)
	if err != nil {
		return Body{}, fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return Body{}, fmt.Errorf("write image part: %w", err)
	}
	if err := filters.WriteMultipart(w); err != nil {
		return Body{}, err
	}
	if err := w.Close(); err != nil {
		return Body{}, fmt.Errorf("close multipart: %w", err)
	}
	return Body{ContentType: w.FormDataContentType(), Data: buf.Bytes()}, nil
}
