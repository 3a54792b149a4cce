// Copyright 2022 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package spashell

import (
	"io"
	"net/http"
	stdhttptest "net/http/httptest"
	"os"
	"sync"

	"github.com/thediveo/spashell/test/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("routing", func() {

	var router http.Handler

	BeforeEach(func() {
		router = NewRouter(NewIndexHandler(testIndex), NewAssetServer(os.DirFS("./testdata/assets")))
	})

	request := func(method, target string) *httptest.StrictResponseRecorder {
		GinkgoHelper()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, stdhttptest.NewRequest(method, target, nil))
		return w
	}

	It("serves the shell on /", func() {
		w := request(http.MethodGet, "/")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/html"))
		Expect(w.Body.String()).To(Equal(testIndex))
	})

	It("serves the auth stub", func() {
		for range 2 {
			w := request(http.MethodGet, "/api/auth")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/plain"))
			Expect(w.Body.String()).To(Equal("API: auth"))
		}
	})

	DescribeTable("serves assets below /assets/",
		func(target string, expectedStatus int, expectedCanary string) {
			w := request(http.MethodGet, target)
			Expect(w.Code).To(Equal(expectedStatus))
			if expectedCanary != "" {
				Expect(w.Body.String()).To(ContainSubstring(expectedCanary))
			}
		},
		Entry("existing asset", "/assets/js/some.js", http.StatusOK, "CANARY JS"),
		Entry("nested asset", "/assets/nested/readme.txt", http.StatusOK, "nested asset"),
		Entry("missing asset", "/assets/js/nonexisting.js", http.StatusNotFound, ""),
		Entry("asset directory", "/assets/nested/", http.StatusNotFound, ""),
		Entry("traversal", "/assets/../../etc/passwd", http.StatusNotFound, ""),
		Entry("traversal to the shell", "/assets/../index.html", http.StatusNotFound, ""),
		Entry("encoded traversal", "/assets/..%2f..%2fetc%2fpasswd", http.StatusNotFound, ""),
	)

	DescribeTable("falls back to the shell for all other paths",
		func(target string) {
			w := request(http.MethodGet, target)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/html"))
			Expect(w.Body.String()).To(Equal(request(http.MethodGet, "/").Body.String()))
		},
		Entry("client-side route", "/foo"),
		Entry("deep client-side route", "/foo/bar/baz?q=42"),
		Entry("other API", "/api/other"),
		Entry("auth with slash", "/api/auth/"),
		Entry("index.html", "/index.html"),
		Entry("assets look-alike", "/assetsx/js/some.js"),
	)

	DescribeTable("serves HEAD like GET",
		func(target string, expectedType string) {
			w := request(http.MethodHead, target)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring(expectedType))
		},
		Entry("shell", "/", "text/html"),
		Entry("auth", "/api/auth", "text/plain"),
		Entry("asset", "/assets/js/some.js", "javascript"),
		Entry("fallback", "/foo", "text/html"),
	)

	DescribeTable("rejects other methods",
		func(method, target string) {
			w := request(method, target)
			Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(w.Header().Get("Allow")).To(Equal("GET, HEAD"))
			Expect(w.Body.String()).NotTo(ContainSubstring("CANARY"))
		},
		Entry("POST /", http.MethodPost, "/"),
		Entry("DELETE /api/auth", http.MethodDelete, "/api/auth"),
		Entry("PUT asset", http.MethodPut, "/assets/js/some.js"),
		Entry("POST fallback", http.MethodPost, "/foo/bar"),
	)

	It("serves concurrent requests without interference", func() {
		srv := stdhttptest.NewServer(Trace(GinkgoLogr)(router))
		defer srv.Close()

		expected := map[string]string{
			"/":                  testIndex,
			"/api/auth":          "API: auth",
			"/assets/js/some.js": string(Successful(os.ReadFile("testdata/assets/js/some.js"))),
			"/client/route":      testIndex,
		}
		const rounds = 25
		var wg sync.WaitGroup
		for range rounds {
			for path, body := range expected {
				wg.Add(1)
				go func(path, body string) {
					defer GinkgoRecover()
					defer wg.Done()
					resp := Successful(http.Get(srv.URL + path))
					defer resp.Body.Close()
					Expect(resp.StatusCode).To(Equal(http.StatusOK))
					Expect(string(Successful(io.ReadAll(resp.Body)))).To(Equal(body), path)
					Expect(resp.Header.Get(RequestIDHeader)).NotTo(BeEmpty())
				}(path, body)
			}
		}
		wg.Wait()
	})

})
