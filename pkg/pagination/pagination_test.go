package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(ctxWithQuery(""))
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := FromContext(ctxWithQuery("limit=50&offset=10"))
	if p.Limit != 50 || p.Offset != 10 {
		t.Errorf("unexpected params: %+v", p)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := FromContext(ctxWithQuery("limit=5000"))
	if p.Limit != MaxLimit {
		t.Errorf("expected clamp to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeOffset(t *testing.T) {
	p := FromContext(ctxWithQuery("offset=-5"))
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 100, 20, 0)
	if !r.HasMore {
		t.Error("expected has_more for first page of 100")
	}
	r = NewResponse(nil, 100, 20, 80)
	if r.HasMore {
		t.Error("expected no more past the last page")
	}
}

func TestParams_NextOffset(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if p.NextOffset() != 60 {
		t.Errorf("expected 60, got %d", p.NextOffset())
	}
	if !p.HasNext(100) || p.HasNext(60) {
		t.Error("unexpected HasNext behavior")
	}
}
