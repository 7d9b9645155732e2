package pagination

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(query string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"?limit=50&offset=10", 50, 10},
		{"?offset=15", DefaultLimit, 15},
		{"?_count=5&_offset=15", 5, 15},
		{"?limit=1000", MaxLimit, 0},
		{"?limit=-3&offset=-1", DefaultLimit, 0},
		{"?limit=abc", DefaultLimit, 0},
	}
	for _, tt := range tests {
		p := paramsFor(tt.query)
		if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
			t.Errorf("%q: got %+v, want limit=%d offset=%d", tt.query, p, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestNewPage_HasMore(t *testing.T) {
	if !NewPage([]int{1}, 30, Params{Limit: 20}).HasMore {
		t.Error("expected more rows")
	}
	if NewPage([]int{1}, 30, Params{Limit: 20, Offset: 20}).HasMore {
		t.Error("expected last page")
	}
}

func TestNewPage_NilSliceBecomesEmpty(t *testing.T) {
	var rows []string
	body, err := json.Marshal(NewPage(rows, 0, Params{Limit: 20}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"data":[]`) {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestParams_HasNext(t *testing.T) {
	if !(Params{Limit: 10, Offset: 0}).HasNext(11) {
		t.Error("expected next page")
	}
	if (Params{Limit: 10, Offset: 10}).HasNext(20) {
		t.Error("expected no next page")
	}
}
