package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/nyris/nyris-go/internal/domain"
)

const offersBody = `{
  "id": "req-9",
  "session": "sess-1",
  "predicted_category": {"tools": 0.75},
  "results": [{
    "oid": "o1",
    "title": "Drill",
    "descriptionShort": "cordless",
    "brand": "Acme",
    "catalogNumbers": ["C-1"],
    "customIds": {"erp": "42"},
    "price": "19.99 EUR",
    "links": {"main": "https://shop/1"},
    "images": ["https://img/1.jpg"],
    "sku": "SKU-1",
    "score": 0.93,
    "unknownField": true
  }]
}`

func TestDecodeOffers(t *testing.T) {
	r, err := DecodeOffers([]byte(offersBody))
	if err != nil {
		t.Fatalf("DecodeOffers: %v", err)
	}
	if r.RequestID != "req-9" || r.SessionID != "sess-1" {
		t.Errorf("ids = %q %q", r.RequestID, r.SessionID)
	}
	if r.PredictedCategories["tools"] != 0.75 {
		t.Errorf("PredictedCategories = %v", r.PredictedCategories)
	}
	if len(r.Offers) != 1 {
		t.Fatalf("len(Offers) = %d", len(r.Offers))
	}
	o := r.Offers[0]
	if o.ID != "o1" || o.Title != "Drill" || o.DescriptionShort != "cordless" || o.Brand != "Acme" {
		t.Errorf("offer = %+v", o)
	}
	if o.CustomIDs["erp"] != "42" || o.CatalogNumbers[0] != "C-1" || o.Links.Main != "https://shop/1" {
		t.Errorf("offer containers = %+v", o)
	}
	if o.Price != "19.99 EUR" || o.SKU != "SKU-1" || o.Score != 0.93 {
		t.Errorf("offer = %+v", o)
	}
	if o.Keywords == nil || o.Categories == nil {
		t.Error("absent offer lists decoded as nil")
	}
}

func TestDecodeOffers_EmptyContainers(t *testing.T) {
	r, err := DecodeOffers([]byte(`{"results":[{"oid":"x"}]}`))
	if err != nil {
		t.Fatalf("DecodeOffers: %v", err)
	}
	if r.PredictedCategories == nil {
		t.Error("PredictedCategories is nil")
	}
	o := r.Offers[0]
	if o.CatalogNumbers == nil || o.CustomIDs == nil || o.Keywords == nil || o.Categories == nil || o.Images == nil {
		t.Errorf("offer has nil containers: %+v", o)
	}

	r, err = DecodeOffers([]byte(`{}`))
	if err != nil {
		t.Fatalf("DecodeOffers: %v", err)
	}
	if r.Offers == nil || len(r.Offers) != 0 {
		t.Errorf("Offers = %#v, want empty", r.Offers)
	}
}

func TestDecodeOffers_Malformed(t *testing.T) {
	for _, body := range []string{"", "not json", `{"results": "nope"}`} {
		_, err := DecodeOffers([]byte(body))
		if !errors.Is(err, domain.ErrMalformedResponse) {
			t.Errorf("DecodeOffers(%q) error = %v, want ErrMalformedResponse", body, err)
		}
	}
}

func TestRaw_NeverFails(t *testing.T) {
	r := Raw([]byte("<html>not json</html>"))
	if r.Body != "<html>not json</html>" {
		t.Errorf("Body = %q", r.Body)
	}
}

func TestDecodeHeadered(t *testing.T) {
	h := http.Header{}
	h.Set(RequestIDHeader, "hdr-id")

	r, err := DecodeHeadered(h, []byte(`{"results":[]}`))
	if err != nil {
		t.Fatalf("DecodeHeadered: %v", err)
	}
	if r.RequestID() != "hdr-id" || r.Body.RequestID != "hdr-id" {
		t.Errorf("request ids = %q / %q", r.RequestID(), r.Body.RequestID)
	}

	r, err = DecodeHeadered(h, []byte(`{"id":"body-id"}`))
	if err != nil {
		t.Fatalf("DecodeHeadered: %v", err)
	}
	if r.Body.RequestID != "body-id" {
		t.Errorf("Body.RequestID = %q, want body id kept", r.Body.RequestID)
	}
}

func TestRaw_AcceptsAnyBody(t *testing.T) {
	if r := Raw([]byte("garbage")); r.Body != "garbage" {
		t.Errorf("Raw body = %q", r.Body)
	}
	if _, err := DecodeOffers([]byte("garbage")); !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("DecodeOffers = %v, want ErrMalformedResponse", err)
	}
}

func TestDecodeObjects(t *testing.T) {
	l, err := DecodeObjects([]byte(`{"regions":[{"confidence":0.9,"region":{"left":10,"top":20,"right":110,"bottom":70}}]}`))
	if err != nil {
		t.Fatalf("DecodeObjects: %v", err)
	}
	if len(l.Regions) != 1 {
		t.Fatalf("len(Regions) = %d", len(l.Regions))
	}
	obj := l.Regions[0]
	if obj.Confidence != 0.9 || obj.Region.Width() != 100 || obj.Region.Height() != 50 {
		t.Errorf("object = %+v", obj)
	}

	l, err = DecodeObjects([]byte(`{}`))
	if err != nil || l.Regions == nil {
		t.Errorf("empty decode = %+v, %v", l, err)
	}

	if _, err := DecodeObjects([]byte("[")); !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("DecodeObjects error = %v", err)
	}
}
