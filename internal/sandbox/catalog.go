package sandbox

import (
	"fmt"
	"strings"

	"github.com/nyris/nyris-go/internal/domain/response"
)

var (
	catalogNouns  = []string{"drill", "hammer", "wrench", "saw", "ladder", "glove", "helmet", "lamp"}
	catalogBrands = []string{"Acme", "Bolt", "Forge"}
)

// Catalog is a fixed, generated offer catalog.
type Catalog struct {
	offers []response.Offer
	bySKU  map[string]int
}

// NewCatalog generates size offers. The same size always yields the same
// catalog.
func NewCatalog(size int) *Catalog {
	c := &Catalog{
		offers: make([]response.Offer, size),
		bySKU:  make(map[string]int, size),
	}
	for i := range size {
		noun := catalogNouns[i%len(catalogNouns)]
		brand := catalogBrands[i%len(catalogBrands)]
		sku := fmt.Sprintf("SKU-%04d", i+1)
		c.offers[i] = response.Offer{
			ID:               fmt.Sprintf("offer-%04d", i+1),
			Title:            fmt.Sprintf("%s %s %d", brand, noun, i+1),
			DescriptionShort: fmt.Sprintf("A %s by %s", noun, brand),
			Brand:            brand,
			Language:         "en",
			CatalogNumbers:   []string{sku},
			Keywords:         []string{noun, strings.ToLower(brand)},
			Categories:       []string{noun},
			Availability:     "in stock",
			Price:            fmt.Sprintf("%d.99 EUR", 10+i%90),
			Links:            response.Links{Main: "https://shop.example/" + sku},
			SKU:              sku,
		}
		c.bySKU[sku] = i
	}
	return c
}

// Size returns the number of offers.
func (c *Catalog) Size() int { return len(c.offers) }

// Top returns the first n offers with descending scores.
func (c *Catalog) Top(n int) []response.Offer {
	return scored(c.offers[:min(n, len(c.offers))])
}

// Search returns up to n offers whose title or keywords contain every word
// of query.
func (c *Catalog) Search(query string, n int) []response.Offer {
	words := strings.Fields(strings.ToLower(query))
	var hits []response.Offer
	for _, o := range c.offers {
		if len(hits) == n {
			break
		}
		if matchesAll(o, words) {
			hits = append(hits, o)
		}
	}
	return scored(hits)
}

// Similar returns up to n offers sharing the category of sku. ok is false
// for unknown SKUs.
func (c *Catalog) Similar(sku string, n int) (offers []response.Offer, ok bool) {
	i, ok := c.bySKU[sku]
	if !ok {
		return nil, false
	}
	category := c.offers[i].Categories[0]
	var hits []response.Offer
	for j, o := range c.offers {
		if len(hits) == n {
			break
		}
		if j != i && o.Categories[0] == category {
			hits = append(hits, o)
		}
	}
	return scored(hits), true
}

// Categories returns the category distribution of offers, at most n entries.
func Categories(offers []response.Offer, n int) map[string]float32 {
	out := make(map[string]float32)
	if len(offers) == 0 {
		return out
	}
	share := 1 / float32(len(offers))
	for _, o := range offers {
		for _, cat := range o.Categories {
			if _, ok := out[cat]; !ok && len(out) == n {
				continue
			}
			out[cat] += share
		}
	}
	return out
}

func matchesAll(o response.Offer, words []string) bool {
	text := strings.ToLower(o.Title + " " + strings.Join(o.Keywords, " "))
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

// scored copies offers and assigns scores from 1 down.
func scored(offers []response.Offer) []response.Offer {
	out := make([]response.Offer, len(offers))
	for i, o := range offers {
		o.Score = 1 - float32(i)/float32(len(offers)+1)
		out[i] = o
	}
	return out
}
