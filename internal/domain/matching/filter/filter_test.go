package filter

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"github.com/nyris/nyris-go/internal/domain"
)

func sampleList() List {
	var l List
	l.Add("brand", "a", "b")
	l.Add("color", "red")
	return l
}

func TestFields_Order(t *testing.T) {
	want := []Field{
		{"filters[0].filterType", "brand"},
		{"filters[0].filterValues[0]", "a"},
		{"filters[0].filterValues[1]", "b"},
		{"filters[1].filterType", "color"},
		{"filters[1].filterValues[0]", "red"},
	}

	l := sampleList()
	got := l.Fields()
	if len(got) != len(want) {
		t.Fatalf("got %d fields, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFields_Empty(t *testing.T) {
	var l List
	if f := l.Fields(); len(f) != 0 {
		t.Errorf("Fields() = %v, want empty", f)
	}
}

func TestWriteMultipart_PreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	l := sampleList()
	if err := l.WriteMultipart(w); err != nil {
		t.Fatalf("WriteMultipart: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	r := multipart.NewReader(&buf, w.Boundary())
	var names, values []string
	for {
		p, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		v, _ := io.ReadAll(p)
		names = append(names, p.FormName())
		values = append(values, string(v))
	}

	wantNames := []string{
		"filters[0].filterType",
		"filters[0].filterValues[0]",
		"filters[0].filterValues[1]",
		"filters[1].filterType",
		"filters[1].filterValues[0]",
	}
	wantValues := []string{"brand", "a", "b", "color", "red"}
	for i := range wantNames {
		if names[i] != wantNames[i] || values[i] != wantValues[i] {
			t.Errorf("part[%d] = %s=%s, want %s=%s", i, names[i], values[i], wantNames[i], wantValues[i])
		}
	}
}

func TestReset_KeepsEarlierCopies(t *testing.T) {
	l := sampleList()
	snap := l

	l.Reset()

	if l.Len() != 0 {
		t.Errorf("Len() after Reset = %d", l.Len())
	}
	if snap.Len() != 2 {
		t.Errorf("snapshot Len() = %d, want 2", snap.Len())
	}
}

func TestAdd_CopiesValues(t *testing.T) {
	values := []string{"x", "y"}
	var l List
	l.Add("size", values...)
	values[0] = "changed"

	if got := l.Items()[0].Values[0]; got != "x" {
		t.Errorf("stored value = %q, want x", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() List
		wantErr bool
	}{
		{"empty", func() List { return List{} }, false},
		{"valid", sampleList, false},
		{"missing type", func() List {
			var l List
			l.Add("", "v")
			return l
		}, true},
		{"missing values", func() List {
			var l List
			l.Add("brand")
			return l
		}, true},
		{"too many", func() List {
			var l List
			for range MaxFilters + 1 {
				l.Add("t", "v")
			}
			return l
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidConfiguration) {
					t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}
