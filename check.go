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
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// assetRefs selects the elements of a shell document that make the browser
// fetch further resources, together with the referencing attribute.
var assetRefs = []struct {
	selector string
	attr     string
}{
	{"script[src]", "src"},
	{"link[href]", "href"},
	{"img[src]", "src"},
	{"source[src]", "src"},
}

// CheckIndexAssets parses the specified shell document and returns the sorted
// list of asset references below AssetsPrefix that cannot be found in the
// specified assets fs. References to other hosts or outside AssetsPrefix are
// ignored. The frontend build happens outside the server, so this catches a
// shell and an asset directory that come from different builds.
func CheckIndexAssets(document string, assets fs.FS) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("cannot parse SPA shell document: %w", err)
	}
	missing := map[string]struct{}{}
	for _, ref := range assetRefs {
		doc.Find(ref.selector).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr(ref.attr)
			u, err := url.Parse(href)
			if err != nil || u.Scheme != "" || u.Host != "" {
				return
			}
			p := path.Clean("/" + u.Path)
			name, ok := strings.CutPrefix(p, AssetsPrefix+"/")
			if !ok {
				return
			}
			if _, err := fs.Stat(assets, name); err != nil {
				missing[p] = struct{}{}
			}
		})
	}
	refs := make([]string, 0, len(missing))
	for ref := range missing {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs, nil
}
