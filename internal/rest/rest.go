package rest

import (
	"net/http"
	"os"
	"path/filepath"
)

// ErrorResponse is the JSON body returned for request failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FrontendHandler serves the built single-page frontend. Unknown paths fall
// back to the index file so client-side routing keeps working after a refresh.
type FrontendHandler struct {
	dir   string
	index string
	fs    http.Handler
}

func NewFrontendHandler(dir string, index string) *FrontendHandler {
	return &FrontendHandler{
		dir:   dir,
		index: index,
		fs:    http.FileServer(http.Dir(dir)),
	}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, h.index))
		return
	}
	h.fs.ServeHTTP(w, r)
}
