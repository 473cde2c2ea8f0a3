package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adrecon/internal/dashboard"
	"github.com/sells-group/adrecon/internal/export"
	"github.com/sells-group/adrecon/internal/model"
	"github.com/sells-group/adrecon/internal/reconcile"
	"github.com/sells-group/adrecon/internal/store"
)

// PreviewRows is how many rows an upload response previews.
const PreviewRows = 100

// Upload form fields.
const (
	FieldKiwi    = "kiwi_file"
	FieldWabang  = "wabang_file"
	FieldBackend = "backend_file"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var allowedExtensions = map[string]bool{".xlsx": true, ".xls": true}

type uploadResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	RowCount    int         `json:"row_count"`
	PreviewData []model.Row `json:"preview_data"`
	Columns     []string    `json:"columns"`
}

type dataResponse struct {
	Success  bool        `json:"success"`
	Data     []model.Row `json:"data"`
	RowCount int         `json:"row_count"`
}

type statisticsResponse struct {
	Success bool `json:"success"`
	*dashboard.Statistics
}

type optionsResponse struct {
	Success bool              `json:"success"`
	Options dashboard.Options `json:"options"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadMB)<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	dir := s.cfg.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		zap.L().Error("server: create upload dir", zap.String("dir", dir), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}

	var (
		in    reconcile.Inputs
		saved []string
	)
	defer func() {
		for _, p := range saved {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				zap.L().Warn("server: remove upload", zap.String("path", p), zap.Error(err))
			}
		}
	}()

	for _, f := range []struct {
		field string
		dst   *string
	}{
		{FieldKiwi, &in.Kiwi},
		{FieldWabang, &in.Wabang},
		{FieldBackend, &in.Backend},
	} {
		path, err := saveUpload(r, f.field, dir)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if path != "" {
			saved = append(saved, path)
			*f.dst = path
		}
	}

	snap, err := s.proc.Process(in)
	if err != nil {
		if reconcile.IsMissingSource(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if reconcile.IsSourceRead(err) {
			zap.L().Warn("server: unreadable source", zap.Error(err))
			writeError(w, http.StatusUnprocessableEntity, "processing failed: "+err.Error())
			return
		}
		zap.L().Error("server: processing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "processing failed: "+err.Error())
		return
	}

	sid := s.ensureSession(w, r)
	if err := s.store.Put(r.Context(), sid, snap); err != nil {
		zap.L().Error("server: store snapshot", zap.String("session_id", sid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cannot save processed data")
		return
	}

	zap.L().Info("server: upload processed",
		zap.String("session_id", sid),
		zap.String("snapshot_id", snap.ID),
		zap.Int("rows", snap.Len()),
	)
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:     true,
		Message:     fmt.Sprintf("processed %d rows", snap.Len()),
		RowCount:    snap.Len(),
		PreviewData: snap.Preview(PreviewRows),
		Columns:     snap.ColumnNames(),
	})
}

// saveUpload copies the named form file into dir. It returns "" when the
// field is absent or empty.
func saveUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", eris.Wrapf(err, "read %s", field)
	}
	defer func() { _ = file.Close() }()
	if header.Filename == "" {
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", eris.Errorf("%s: unsupported file type %q, expected .xlsx or .xls", field, ext)
	}

	prefix := strings.TrimSuffix(field, "_file")
	return writeTemp(file, dir, prefix+"-*"+ext)
}

func writeTemp(src multipart.File, dir, pattern string) (string, error) {
	dst, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", eris.Wrap(err, "server: create upload file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", eris.Wrap(err, "server: write upload file")
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", eris.Wrap(err, "server: close upload file")
	}
	return dst.Name(), nil
}

// snapshot loads the session's snapshot, writing a 404 when there is none.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*model.Snapshot, bool) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, http.StatusNotFound, "no data, upload files first")
		return nil, false
	}
	snap, err := s.store.Get(r.Context(), sid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no data, upload files first")
			return nil, false
		}
		zap.L().Error("server: load snapshot", zap.String("session_id", sid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "cannot load data")
		return nil, false
	}
	return snap, true
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	recs := dashboard.ParseFilter(r.URL.Query()).Apply(snap)
	writeJSON(w, http.StatusOK, dataResponse{
		Success:  true,
		Data:     snap.Rows(recs),
		RowCount: len(recs),
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	stats := dashboard.Compute(snap, dashboard.ParseFilter(r.URL.Query()))
	writeJSON(w, http.StatusOK, statisticsResponse{Success: true, Statistics: stats})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{Success: true, Options: dashboard.FilterOptions(snap)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap); err != nil {
		zap.L().Error("server: export snapshot", zap.String("snapshot_id", snap.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, export.Filename(s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r); sid != "" {
		if err := s.store.Delete(r.Context(), sid); err != nil {
			zap.L().Error("server: delete session", zap.String("session_id", sid), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "cannot delete session")
			return
		}
	}
	clearSession(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
