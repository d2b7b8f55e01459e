package filter

import (
	"fmt"
	"mime/multipart"

	"github.com/nyris/nyris-go/internal/domain"
)

// MaxFilters is the maximum number of filters attached to one request.
const MaxFilters = 32

// Filter restricts matching to offers whose attribute has one of the values.
type Filter struct {
	Type   string
	Values []string
}

// Field is one encoded multipart form field.
type Field struct {
	Name  string
	Value string
}

// List is an ordered filter list. Order is significant: it determines the
// indices encoded into the form field names.
type List struct {
	items []Filter
}

// Add appends a filter. Values are copied.
func (l *List) Add(filterType string, values ...string) {
	l.items = append(l.items, Filter{
		Type:   filterType,
		Values: append([]string(nil), values...),
	})
}

// Items returns the filters in insertion order.
func (l List) Items() []Filter { return l.items }

// Len returns the number of filters.
func (l List) Len() int { return len(l.items) }

// Reset empties the list. Copies taken before Reset keep their filters.
func (l *List) Reset() { l.items = nil }

// Validate checks that every filter names a type and carries at least one value.
func (l List) Validate() error {
	if len(l.items) > MaxFilters {
		return domain.InvalidConfiguration(fmt.Sprintf("too many filters (max %d)", MaxFilters))
	}
	for i, f := range l.items {
		if f.Type == "" {
			return domain.InvalidConfiguration(fmt.Sprintf("filters[%d]: filter type is required", i))
		}
		if len(f.Values) == 0 {
			return domain.InvalidConfiguration(fmt.Sprintf("filters[%d] %q: at least one value is required", i, f.Type))
		}
	}
	return nil
}

// Fields encodes the list as two-level indexed form fields:
// filters[i].filterType followed by filters[i].filterValues[j] per value.
func (l List) Fields() []Field {
	var out []Field
	for i, f := range l.items {
		out = append(out, Field{
			Name:  fmt.Sprintf("filters[%d].filterType", i),
			Value: f.Type,
		})
		for j, v := range f.Values {
			out = append(out, Field{
				Name:  fmt.Sprintf("filters[%d].filterValues[%d]", i, j),
				Value: v,
			})
		}
	}
	return out
}

// WriteMultipart writes the encoded fields to w in order.
func (l List) WriteMultipart(w *multipart.Writer) error {
	for _, f := range l.Fields() {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	return nil
}
