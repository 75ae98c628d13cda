package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"urlsnap/internal/handler"
	"urlsnap/pkg/model"
)

type fakeService struct {
	fetch func(ctx context.Context, urls []string) (model.Report, error)
}

func (f *fakeService) Fetch(ctx context.Context, urls []string) (model.Report, error) {
	return f.fetch(ctx, urls)
}

func TestInvoke(t *testing.T) {
	t.Parallel()

	t.Run("missing urls rejected with 400", func(t *testing.T) {
		t.Parallel()
		h := handler.New(&fakeService{fetch: func(context.Context, []string) (model.Report, error) {
			t.Fatal("fetch must not be called")
			return nil, nil
		}}, nil)

		for _, event := range []string{`{}`, `{"urls": []}`, `{"urls": ["", ""]}`, `not json`} {
			out := h.Invoke(context.Background(), []byte(event))
			assert.Equal(t, int64(400), gjson.GetBytes(out, "statusCode").Int(), "event %q", event)
			body := gjson.GetBytes(out, "body").String()
			assert.Equal(t, "No URLs provided in the event.", gjson.Get(body, "error").String())
		}
	})

	t.Run("fetch failure surfaces as 500", func(t *testing.T) {
		t.Parallel()
		h := handler.New(&fakeService{fetch: func(context.Context, []string) (model.Report, error) {
			return nil, errors.New("download timeout: 1 of 2 urls matched")
		}}, nil)

		out := h.Invoke(context.Background(), []byte(`{"urls": ["https://a.com/x"]}`))
		assert.Equal(t, int64(500), gjson.GetBytes(out, "statusCode").Int())
		body := gjson.GetBytes(out, "body").String()
		assert.Contains(t, gjson.Get(body, "error").String(), "download timeout")
	})

	t.Run("success embeds the report as a json string body", func(t *testing.T) {
		t.Parallel()
		content := "H4sIAAAAAAAA/w=="
		var gotURLs []string
		h := handler.New(&fakeService{fetch: func(_ context.Context, urls []string) (model.Report, error) {
			gotURLs = urls
			return model.Report{
				"https://a.com/x": {Filename: "0001.html", Content: &content},
			}, nil
		}}, nil)

		out := h.Invoke(context.Background(), []byte(`{"urls": ["https://a.com/x", ""]}`))
		assert.Equal(t, []string{"https://a.com/x"}, gotURLs)
		assert.Equal(t, int64(200), gjson.GetBytes(out, "statusCode").Int())

		// body 是嵌套的 JSON 字符串，需要二次解析
		body := gjson.GetBytes(out, "body").String()
		assert.Equal(t, "Downloads completed successfully.", gjson.Get(body, "message").String())
		entry := gjson.Get(body, "url_mappings").Map()["https://a.com/x"]
		assert.Equal(t, "0001.html", entry.Get("filename").String())
		assert.Equal(t, content, entry.Get("content").String())
	})

	t.Run("null content survives serialization", func(t *testing.T) {
		t.Parallel()
		h := handler.New(&fakeService{fetch: func(context.Context, []string) (model.Report, error) {
			return model.Report{
				"https://a.com/x": {Filename: "0001.html", Error: "0001.html is not valid utf-8 text"},
			}, nil
		}}, nil)

		out := h.Invoke(context.Background(), []byte(`{"urls": ["https://a.com/x"]}`))
		body := gjson.GetBytes(out, "body").String()
		entry := gjson.Get(body, "url_mappings").Map()["https://a.com/x"]
		assert.Equal(t, gjson.Null, entry.Get("content").Type)
		assert.Contains(t, entry.Get("error").String(), "not valid utf-8")
	})
}

func TestServeHTTP(t *testing.T) {
	t.Parallel()

	t.Run("post invokes the service", func(t *testing.T) {
		t.Parallel()
		h := handler.New(&fakeService{fetch: func(context.Context, []string) (model.Report, error) {
			return model.Report{}, nil
		}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/2015-03-31/functions/function/invocations",
			strings.NewReader(`{"urls": ["https://a.com/x"]}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, int64(200), gjson.Get(rec.Body.String(), "statusCode").Int())
	})

	t.Run("non-post rejected", func(t *testing.T) {
		t.Parallel()
		h := handler.New(&fakeService{fetch: func(context.Context, []string) (model.Report, error) {
			return nil, nil
		}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
