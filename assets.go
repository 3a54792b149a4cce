// Copyright 2022 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spashell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
)

// AssetServer implements an http.Handler serving static assets from a
// read-only fs.FS, such as an os.DirFS of the frontend build's asset directory.
// The (unrooted) request URL path is the lookup key into the fs.FS, so mount
// the AssetServer using http.StripPrefix.
//
// Directories are never listed. Requests for missing assets fail with 404,
// while all other errors fail with 500 and a description of the underlying
// error in the response body, unless WithRedactedErrors is in effect.
type AssetServer struct {
	fs     fs.FS
	redact bool
}

// AssetOption sets optional properties at the time of creating an
// AssetServer.
type AssetOption func(*AssetServer)

// NewAssetServer returns a new HTTP handler serving static assets from the
// specified fs. In order to serve assets from a directory on the OS file
// system, use os.DirFS:
//
//	h := NewAssetServer(os.DirFS("./frontend/dist/assets"))
func NewAssetServer(fs fs.FS, opts ...AssetOption) *AssetServer {
	h := &AssetServer{fs: fs}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithRedactedErrors replaces the error details in 500 responses by
// NormalizedHttpError's generic status texts.
func WithRedactedErrors() AssetOption {
	return func(h *AssetServer) {
		h.redact = true
	}
}

// ServeHTTP serves the asset named by the request URL path.
func (h *AssetServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Cleaning the rooted path keeps parent directory traversal from ever
	// leaving the fs; fs.FS then wants the unrooted path.
	name := cleanedPath(r)[1:]
	if name == "" {
		http.NotFound(w, r) // the asset root is a directory.
		return
	}
	f, err := h.fs.Open(name)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		h.fail(w, err)
		return
	}
	if !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	content, ok := f.(io.ReadSeeker)
	if !ok {
		contents, err := io.ReadAll(f)
		if err != nil {
			h.fail(w, err)
			return
		}
		content = bytes.NewReader(contents)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
}

// fail sends an error response based on the specified error.
func (h *AssetServer) fail(w http.ResponseWriter, err error) {
	if h.redact || isNotFound(err) {
		NormalizedHttpError(w, err)
		return
	}
	http.Error(w, fmt.Sprintf("Unhandled internal error: %s", err),
		http.StatusInternalServerError)
}

// isNotFound reports errors about assets that do not exist, including names
// that cannot exist on the particular fs.
func isNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid)
}
