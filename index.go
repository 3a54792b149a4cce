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
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// ForwardedPrefixHeader, if present, specifies the prefix that need to be
// preprended to the request's URI path in order to learn the original path
// when hitting the path rewriting proxy.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI (or sometimes only
// the original URI path) of a request when hitting the first path rewriting
// proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// baseRe matches the base element of the shell document. The shell must stay
// usable as plain HTML during frontend development, so Go templating is out.
//
// "*?" instead of "*" keeps the expression from gobbling everything up to the
// last(!) empty element.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/>)`)

// IndexHandler implements an http.Handler that serves the SPA shell document,
// regardless of the request path. This is what makes client-side DOM routing
// work: bookmarked or reloaded routes other than "/" get the shell, and the
// client-side router then takes over.
type IndexHandler struct {
	document      string        // the shell document, verbatim.
	modTime       time.Time     // optional Last-Modified time.
	rewriteBase   bool          // adjust <base href> to forwarding proxy headers?
	indexRewriter IndexRewriter // optional post-processing of the document.
}

// IndexOption sets optional properties at the time of creating an
// IndexHandler.
type IndexOption func(*IndexHandler)

// IndexRewriter rewrites (parts) of the shell document to be delivered to a
// requesting client, after the base element has been updated (if enabled).
type IndexRewriter func(r *http.Request, index string) string

// NewIndexHandler returns a new HTTP handler always serving the specified
// document. The document typically has been embedded at build time, so it
// cannot go missing at runtime; an empty document thus is a programming error
// and NewIndexHandler panics.
func NewIndexHandler(document string, opts ...IndexOption) *IndexHandler {
	if document == "" {
		panic("spashell: empty SPA shell document")
	}
	h := &IndexHandler{document: document}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithIndexRewriter sets the specified IndexRewriter that gets called before
// delivering the shell document to requesting clients, allowing for
// application-specific changes.
func WithIndexRewriter(rewriter IndexRewriter) IndexOption {
	return func(h *IndexHandler) {
		h.indexRewriter = rewriter
	}
}

// WithBaseRewriting rewrites the href of the document's base element to the
// base path the client sees, based on the X-Forwarded-Prefix and
// X-Forwarded-Uri headers of path rewriting proxies. Without this option the
// document is served verbatim.
func WithBaseRewriting() IndexOption {
	return func(h *IndexHandler) {
		h.rewriteBase = true
	}
}

// WithModTime sets the Last-Modified time of the document, enabling
// conditional requests.
func WithModTime(t time.Time) IndexOption {
	return func(h *IndexHandler) {
		h.modTime = t
	}
}

// ServeHTTP serves the shell document with a text/html content type and a
// 200 status.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	document := h.document
	if h.rewriteBase {
		// "$" would interfere with the "$1" and "$2" back references, and
		// SPA paths don't need it anyway.
		base := strings.ReplaceAll(basename(r), "$", "")
		document = baseRe.ReplaceAllString(document, "${1}"+base+"${2}")
	}
	if h.indexRewriter != nil {
		document = h.indexRewriter(r, document)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// The shell refers to content-hashed assets, so it must be revalidated
	// in order to pick up new frontend builds.
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "index.html", h.modTime, strings.NewReader(document))
}

// cleanedPath returns the absolute and cleaned request path. Slapping "/" in
// front ensures that path.Clean never resolves against any working directory.
func cleanedPath(r *http.Request) string {
	return path.Clean("/" + r.URL.Path)
}

// originalReqPath returns the (hopefully) original path when hitting the first
// proxy in a chain, based on what has been passed down to us. If no suitable
// forwarding information is present, this is the cleaned request URL path.
func originalReqPath(r *http.Request) string {
	reqPath := cleanedPath(r)
	// Was the request path rewritten? Then the original request path was the
	// forwarded prefix, followed by the remaining part we now see in the
	// request.
	if fwprefix := r.Header.Get(ForwardedPrefixHeader); fwprefix != "" {
		return path.Join(path.Clean("/"+fwprefix), reqPath)
	}
	// Some proxies pass the full original URI, others only its path.
	if fwurl := r.Header.Get(ForwardedUriHeader); fwurl != "" {
		if strings.HasPrefix(fwurl, "/") {
			return path.Clean(fwurl)
		}
		if u, err := url.Parse(fwurl); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return reqPath
}

// basename returns the base path of the SPA from the client's perspective, by
// consulting proxy headers when available. If deriving the base is impossible,
// it is "/". The base always ends in "/", as otherwise browsers would clip the
// final path element.
func basename(r *http.Request) string {
	reqPath := cleanedPath(r)
	origPath := originalReqPath(r)
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(origPath, "/") {
		// the reverse proxy redirected from /foo to /foo/ and then rewrote
		// the path to /.
		origPath += "/"
	}
	var base string
	if strings.HasSuffix(origPath, reqPath) {
		base = origPath[:len(origPath)-len(reqPath)]
	}
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
