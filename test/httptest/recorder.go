// Copyright 2023 Harald Albrecht.
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

/*
Package httptest wraps the standard library's httptest.ResponseRecorder in order
to fail any test whose handler does superfluous response.WriteHeader calls,
including those following an implicit WriteHeader by a first Write.
*/
package httptest

import (
	stdhttptest "net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// StrictResponseRecorder wraps httptest.ResponseRecorder in order to fail
// tests doing superfluous WriteHeader calls.
type StrictResponseRecorder struct {
	*stdhttptest.ResponseRecorder
	wroteHeader  bool
	explicitCode bool
}

// NewRecorder returns a new test response recorder detecting superfluous
// WriteHeader calls.
func NewRecorder() *StrictResponseRecorder {
	return &StrictResponseRecorder{
		ResponseRecorder: stdhttptest.NewRecorder(),
	}
}

// WriteHeader implements http.ResponseWriter, failing tests that do superfluous
// WriteHeader calls or that pass invalid status codes.
func (w *StrictResponseRecorder) WriteHeader(code int) {
	GinkgoHelper()
	if code < 100 || code > 999 {
		Expect(code).To(And(BeNumerically(">=", 100), BeNumerically("<=", 999)),
			"invalid response.WriteHeader status code")
		return
	}
	if w.wroteHeader {
		reason := "superfluous response.WriteHeader call"
		if !w.explicitCode {
			reason += " after response.Write"
		}
		Expect(w.wroteHeader).To(BeFalse(), reason)
	}
	w.wroteHeader = true
	w.explicitCode = true
	w.ResponseRecorder.WriteHeader(code)
}

// Write implements http.ResponseWriter, noting the implicit 200 status of a
// first write.
func (w *StrictResponseRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseRecorder.Write(b)
}

// WriteString implements io.StringWriter, so io.WriteString doesn't bypass
// Write.
func (w *StrictResponseRecorder) WriteString(s string) (int, error) {
	w.wroteHeader = true
	return w.ResponseRecorder.WriteString(s)
}
