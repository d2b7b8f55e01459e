// Package response holds the result variants of matching calls and the
// resolver that decodes a transport response into the requested variant.
package response

// Links are the product page URLs of an offer.
type Links struct {
	Main   string `json:"main,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// Offer is one matched catalog item.
type Offer struct {
	ID               string            `json:"oid,omitempty"`
	Title            string            `json:"title,omitempty"`
	DescriptionShort string            `json:"descriptionShort,omitempty"`
	DescriptionLong  string            `json:"descriptionLong,omitempty"`
	Language         string            `json:"language,omitempty"`
	Brand            string            `json:"brand,omitempty"`
	CatalogNumbers   []string          `json:"catalogNumbers"`
	CustomIDs        map[string]string `json:"customIds"`
	Keywords         []string          `json:"keywords"`
	Categories       []string          `json:"categories"`
	Availability     string            `json:"availability,omitempty"`
	FeedID           string            `json:"feedId,omitempty"`
	GroupID          string            `json:"groupId,omitempty"`
	Price            string            `json:"price,omitempty"`
	SalePrice        string            `json:"salePrice,omitempty"`
	Links            Links             `json:"links"`
	Images           []string          `json:"images"`
	Metadata         string            `json:"metadata,omitempty"`
	SKU              string            `json:"sku,omitempty"`
	Score            float32           `json:"score"`
}

// OfferResponse is the fully decoded matching result.
type OfferResponse struct {
	RequestID           string             `json:"id,omitempty"`
	SessionID           string             `json:"session,omitempty"`
	PredictedCategories map[string]float32 `json:"predicted_category"`
	Offers              []Offer            `json:"results"`
}

// normalize replaces absent containers with empty ones.
func (r *OfferResponse) normalize() {
	if r.PredictedCategories == nil {
		r.PredictedCategories = map[string]float32{}
	}
	if r.Offers == nil {
		r.Offers = []Offer{}
	}
	for i := range r.Offers {
		r.Offers[i].normalize()
	}
}

func (o *Offer) normalize() {
	if o.CatalogNumbers == nil {
		o.CatalogNumbers = []string{}
	}
	if o.CustomIDs == nil {
		o.CustomIDs = map[string]string{}
	}
	if o.Keywords == nil {
		o.Keywords = []string{}
	}
	if o.Categories == nil {
		o.Categories = []string{}
	}
	if o.Images == nil {
		o.Images = []string{}
	}
}
