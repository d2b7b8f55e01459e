package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/nyris/nyris-go/internal/domain/matching/filter"
	"github.com/nyris/nyris-go/internal/transport/header"
)

func TestBuild_Headers(t *testing.T) {
	b := NewBuilder(header.NewIdentity("key", "cid"))
	req := b.Build(Spec{
		Method:   http.MethodPost,
		URL:      "https://api.nyris.io/find/v1.1",
		Accept:   "application/offers.complete+json",
		Language: "de",
		Options:  "exact +similarity",
		Body:     Image([]byte{1, 2, 3}),
	})

	want := map[string]string{
		"X-Api-Key":        "key",
		"Apikey":           "key",
		"X-Nyris-Clientid": "cid",
		"Accept":           "application/offers.complete+json",
		"Accept-Language":  "de",
		"Content-Type":     "image/jpg",
		"Content-Length":   "3",
		"X-Options":        "exact +similarity",
	}
	for k, v := range want {
		if got := req.Header.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		t.Error("User-Agent missing")
	}
	if req.Method != http.MethodPost || !bytes.Equal(req.Body, []byte{1, 2, 3}) {
		t.Errorf("req = %s %v", req.Method, req.Body)
	}
}

func TestBuild_OmitsEmptyOptions(t *testing.T) {
	b := NewBuilder(header.NewIdentity("key", ""))
	req := b.Build(Spec{Method: http.MethodGet, URL: "https://api.nyris.io/recommend/v1/x"})

	if _, ok := req.Header["X-Options"]; ok {
		t.Error("X-Options present for empty options")
	}
	if got := req.Header.Get("Content-Length"); got != "0" {
		t.Errorf("Content-Length = %q, want 0", got)
	}
	if _, ok := req.Header["Content-Type"]; ok {
		t.Error("Content-Type present for empty body")
	}
}

func TestBuild_UsesCurrentAPIKey(t *testing.T) {
	id := header.NewIdentity("first", "")
	b := NewBuilder(id)
	id.SetAPIKey("second")

	req := b.Build(Spec{Method: http.MethodGet, URL: "https://api.nyris.io"})
	if got := req.Header.Get("X-Api-Key"); got != "second" {
		t.Errorf("X-Api-Key = %q, want second", got)
	}
}

func TestVector(t *testing.T) {
	body, err := Vector([]float32{1, -0.5})
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	if body.ContentType != ContentTypeJSON {
		t.Errorf("ContentType = %q", body.ContentType)
	}
	// 1.0 = 00 00 80 3f, -0.5 = 00 00 00 bf (little-endian)
	want := `{"b64":"AACAPwAAAL8="}`
	if string(body.Data) != want {
		t.Errorf("body = %s, want %s", body.Data, want)
	}
}

func TestEncodeVector_RoundTrip(t *testing.T) {
	in := []float32{0.1, 0.2, 3.5, -7, 0}
	out, err := DecodeVector(EncodeVector(in))
	if err != nil {
		t.Fatalf("DecodeVector: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeVector_Invalid(t *testing.T) {
	if _, err := DecodeVector("!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := DecodeVector("AAA="); err == nil {
		t.Error("expected error for truncated vector")
	}
}

func TestText(t *testing.T) {
	body := Text("hammer drill")
	if body.ContentType != ContentTypeText || string(body.Data) != "hammer drill" {
		t.Errorf("body = %+v", body)
	}
}

func TestJSON(t *testing.T) {
	body, err := JSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(body.Data, &got); err != nil || got["a"] != 1 {
		t.Errorf("decoded %v, err %v", got, err)
	}

	if _, err := JSON(make(chan int)); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestMultipart(t *testing.T) {
	var filters filter.List
	filters.Add("brand", "a", "b")

	body, err := Multipart([]byte("jpegdata"), filters)
	if err != nil {
		t.Fatalf("Multipart: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(body.ContentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("content type %q: %v", body.ContentType, err)
	}

	r := multipart.NewReader(bytes.NewReader(body.Data), params["boundary"])
	type part struct{ name, file, ctype, value string }
	var parts []part
	for {
		p, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		v, _ := io.ReadAll(p)
		parts = append(parts, part{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), string(v)})
	}

	want := []part{
		{"image", "image.jpg", "image/jpeg", "jpegdata"},
		{"filters[0].filterType", "", "", "brand"},
		{"filters[0].filterValues[0]", "", "", "a"},
		{"filters[0].filterValues[1]", "", "", "b"},
	}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d: %+v", len(parts), len(want), parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part[%d] = %+v, want %+v", i, parts[i], want[i])
		}
	}
}
