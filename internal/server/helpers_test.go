package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/adrecon/internal/config"
	"github.com/sells-group/adrecon/internal/model"
	"github.com/sells-group/adrecon/internal/reconcile"
	"github.com/sells-group/adrecon/internal/store"
)

// fakeProcessor validates inputs like the pipeline does and returns a
// canned snapshot.
type fakeProcessor struct {
	mu     sync.Mutex
	snap   *model.Snapshot
	err    error
	inputs []reconcile.Inputs
	// existed records whether every input file was on disk during Process.
	existed bool
}

func (p *fakeProcessor) Process(in reconcile.Inputs) (*model.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputs = append(p.inputs, in)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p.existed = true
	for _, path := range []string{in.Kiwi, in.Wabang, in.Backend} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			p.existed = false
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.snap, nil
}

func testSnapshot() *model.Snapshot {
	cols := []model.Column{
		{Name: model.ColPlanID, Kind: model.KindText},
		{Name: model.ColDate, Kind: model.KindText},
		{Name: model.ColAgentSource, Kind: model.KindText},
		{Name: model.ColSpend, Kind: model.KindNumber},
		{Name: model.ColRegistrations, Kind: model.KindNumber},
	}
	for _, d := range model.DimensionColumns {
		cols = append(cols, model.Column{Name: d, Kind: model.KindText})
	}

	recs := []model.Record{
		{PlanID: "1001", Date: model.Ptr("2024-01-01"), AgentSource: model.AgentKiwi,
			Dimensions: model.Dimensions{BiddingMethod: model.Ptr("OCPC"), Targeting: model.Ptr("DMP")}},
		{PlanID: "1001", Date: model.Ptr("2024-01-02"), AgentSource: model.AgentKiwi,
			Dimensions: model.Dimensions{BiddingMethod: model.Ptr("OCPC"), Targeting: model.Ptr("DMP")}},
		{PlanID: "2002", Date: model.Ptr("2024-01-01"), AgentSource: model.AgentWabang,
			Dimensions: model.Dimensions{BiddingMethod: model.Ptr("CPC"), Targeting: model.Ptr("LBS")}},
	}
	recs[0].SetNumber(model.ColSpend, model.Ptr(100.0))
	recs[0].SetNumber(model.ColRegistrations, model.Ptr(10.0))
	recs[1].SetNumber(model.ColSpend, model.Ptr(200.0))
	recs[2].SetNumber(model.ColSpend, model.Ptr(50.0))
	recs[2].SetNumber(model.ColRegistrations, model.Ptr(5.0))

	return model.NewSnapshot("snap-1", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), cols, recs)
}

func newTestServer(t *testing.T, proc Processor, mutate ...func(*config.ServerConfig)) (*Server, http.Handler) {
	t.Helper()
	cfg := config.ServerConfig{
		MaxUploadMB: 1,
		UploadDir:   t.TempDir(),
	}
	for _, m := range mutate {
		m(&cfg)
	}
	s := New(cfg, store.NewMemory(time.Hour), proc)
	s.newID = func() string { return "sess-1" }
	s.now = func() time.Time { return time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC) }
	return s, s.Handler()
}

// multipartBody builds an upload form with one file per field.
func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("PK fake workbook"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	body, ct := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	return req
}

func withSession(req *http.Request, id string) *http.Request {
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	return req
}
