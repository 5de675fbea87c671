package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvview/internal/dataset"
	"csvview/internal/loader"
	"csvview/internal/store"
	"csvview/internal/table"
)

func makeCSV(n int) string {
	var sb strings.Builder
	sb.WriteString("id,name,city\n")
	for i := 1; i <= n; i++ {
		city := "Berlin"
		if i%2 == 0 {
			city = "Paris"
		}
		fmt.Fprintf(&sb, "%d,name%04d,%s\n", i, i, city)
	}
	return sb.String()
}

type fixture struct {
	srv   *Server
	ctrl  *table.Controller
	store *store.Store
}

func newFixture(t *testing.T, rows int) fixture {
	t.Helper()
	st, err := store.Open(":memory:", store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctrl := table.New(table.Options{})
	if rows > 0 {
		ds, err := dataset.ParseString(makeCSV(rows), dataset.Options{Source: "people.csv"})
		require.NoError(t, err)
		ctrl.Load(ds)
	}
	l := loader.New(st, loader.Options{})
	return fixture{srv: New(ctrl, l, st, Options{}), ctrl: ctrl, store: st}
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func uploadRequest(t *testing.T, name, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMeta(t *testing.T) {
	f := newFixture(t, 120)

	rec := do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/meta", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	m := decode[metaResponse](t, rec)
	assert.Equal(t, "people.csv", m.Source)
	assert.Equal(t, []string{"id", "name", "city"}, m.Headers)
	assert.Equal(t, 120, m.TotalRecords)
	assert.Equal(t, 50, m.PageSize)
	assert.True(t, m.HasData)
}

func TestPage(t *testing.T) {
	f := newFixture(t, 1000)

	rec := do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?page=12", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	v := decode[table.View](t, rec)
	assert.Equal(t, 12, v.Page)
	assert.Equal(t, 20, v.TotalPages)
	assert.Equal(t, 551, v.FirstIndex)
	assert.Len(t, v.Rows, 50)
	assert.Equal(t, []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, v.PageNumbers)
	assert.True(t, v.Controls.CanFastPrev)
	assert.False(t, v.Controls.CanFastNext)
}

func TestPage_ClampsAndQueries(t *testing.T) {
	f := newFixture(t, 120)

	v := decode[table.View](t, do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?page=99", nil)))
	assert.Equal(t, 3, v.Page)

	v = decode[table.View](t, do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?page=0", nil)))
	assert.Equal(t, 1, v.Page)

	v = decode[table.View](t, do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?page=2&q=PARIS", nil)))
	assert.Equal(t, "PARIS", v.Query)
	assert.Equal(t, 60, v.FilteredCount)
	assert.Equal(t, 2, v.Page, "page applies after a query change")

	// Same query keeps position.
	v = decode[table.View](t, do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?q=PARIS", nil)))
	assert.Equal(t, 2, v.Page)

	// A new query resets to page 1.
	v = decode[table.View](t, do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?q=berlin", nil)))
	assert.Equal(t, 1, v.Page)

	v = decode[table.View](t, do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?q=nowhere", nil)))
	assert.Equal(t, 0, v.TotalPages)
	assert.Equal(t, 1, v.Page)
	assert.Empty(t, v.Rows)
}

func TestPage_BadParam(t *testing.T) {
	f := newFixture(t, 10)

	rec := do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?page=two", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid page")
}

func TestRow(t *testing.T) {
	f := newFixture(t, 120)

	rec := do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/row/2?page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	r := decode[rowResponse](t, rec)
	assert.Equal(t, 53, r.Row)
	assert.Equal(t, []fieldJSON{
		{Label: "id", Value: "53"},
		{Label: "name", Value: "name0053"},
		{Label: "city", Value: "Berlin"},
	}, r.Fields)

	rec = do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/row/30?page=3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/row/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "non-numeric index does not route")
}

func TestUpload(t *testing.T) {
	f := newFixture(t, 0)

	rec := do(t, f.srv, uploadRequest(t, "cities.csv", "city;country\nLyon;FR\nGraz;AT\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[uploadResponse](t, rec)
	assert.Contains(t, resp.Summary, "Loaded cities.csv: 2 rows, 2 columns")
	assert.Empty(t, resp.Warning)
	assert.Equal(t, []string{"city", "country"}, resp.View.Headers)
	assert.True(t, f.ctrl.HasData())

	snap, ok, err := f.store.LoadCSV(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cities.csv", snap.Source)
}

func TestUpload_TooLargeToPersistWarns(t *testing.T) {
	st, err := store.Open(":memory:", store.Options{MaxBytes: 8})
	require.NoError(t, err)
	defer st.Close()

	ctrl := table.New(table.Options{})
	srv := New(ctrl, loader.New(st, loader.Options{}), st, Options{})

	rec := do(t, srv, uploadRequest(t, "big.csv", makeCSV(5)))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[uploadResponse](t, rec)
	assert.Contains(t, resp.Warning, "too large")
	assert.Equal(t, 5, resp.View.TotalRecords)
}

func TestUpload_Errors(t *testing.T) {
	f := newFixture(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "text/plain")
	assert.Equal(t, http.StatusBadRequest, do(t, f.srv, req).Code)

	small := New(f.ctrl, loader.New(nil, loader.Options{}), nil, Options{MaxUpload: 64})
	rec := do(t, small, uploadRequest(t, "big.csv", makeCSV(50)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	disabled := New(f.ctrl, nil, nil, Options{})
	rec = do(t, disabled, uploadRequest(t, "a.csv", "a\n1\n"))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestClear(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.store.SaveCSV(context.Background(), "people.csv", makeCSV(10), store.Meta{})
	require.NoError(t, err)

	rec := do(t, f.srv, httptest.NewRequest(http.MethodDelete, "/api/data", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, f.ctrl.HasData())

	_, ok, err := f.store.LoadCSV(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, 10)

	rec := do(t, f.srv, httptest.NewRequest(http.MethodPost, "/api/page", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStaticIndex(t *testing.T) {
	f := newFixture(t, 0)

	rec := do(t, f.srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>csvview</title>")
}

func TestLoadReplacesData(t *testing.T) {
	f := newFixture(t, 10)
	do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page?q=paris", nil))

	ds, err := dataset.ParseString(makeCSV(3), dataset.Options{Source: "people.csv"})
	require.NoError(t, err)
	f.srv.Load(ds)

	v := decode[table.View](t, do(t, f.srv, httptest.NewRequest(http.MethodGet, "/api/page", nil)))
	assert.Equal(t, "", v.Query)
	assert.Equal(t, 3, v.TotalRecords)
}

func TestReloadSkippedAfterUpload(t *testing.T) {
	f := newFixture(t, 10)

	ds, err := dataset.ParseString(makeCSV(4), dataset.Options{Source: "people.csv"})
	require.NoError(t, err)
	require.True(t, f.srv.Reload(ds))
	require.Equal(t, 4, f.ctrl.Snapshot().TotalRecords)

	rec := do(t, f.srv, uploadRequest(t, "people.csv", makeCSV(2)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ds, err = dataset.ParseString(makeCSV(7), dataset.Options{Source: "people.csv"})
	require.NoError(t, err)
	assert.False(t, f.srv.Reload(ds), "same-named upload still wins over the file on disk")
	assert.Equal(t, 2, f.ctrl.Snapshot().TotalRecords)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, 3)
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)

	url := URL(ln)
	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	resp, err := http.Get(url + "api/meta")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
