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
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Route paths of the SPA host.
const (
	IndexPath    = "/"
	AuthPath     = "/api/auth"
	AssetsPrefix = "/assets"
)

// allowedMethods lists the methods served on every route, including the
// fallback route.
const allowedMethods = "GET, HEAD"

// NewRouter returns the fixed route table of the SPA host:
//
//   - GET / serves the index handler,
//   - GET /api/auth serves AuthStub,
//   - GET /assets/* serves the assets handler, with the "/assets" prefix
//     stripped from the request path,
//   - GET on any other path falls back to the index handler.
//
// HEAD is served wherever GET is, all other methods get a 405.
func NewRouter(index http.Handler, assets http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get(IndexPath, index.ServeHTTP)
	r.Get(AuthPath, AuthStub)
	r.Get(AssetsPrefix+"/*", http.StripPrefix(AssetsPrefix, assets).ServeHTTP)
	// The fallback must only see the methods all other routes accept, so that
	// a POST to some client-side route doesn't get the shell.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			methodNotAllowed(w, req)
			return
		}
		index.ServeHTTP(w, req)
	})
	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", allowedMethods)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
