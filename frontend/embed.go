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

/*
Package frontend carries the build output of the single page application.

The SPA shell document dist/index.html gets compiled into the binary, so it can
never go missing at runtime. The static assets in dist/assets are not embedded
but instead served from disk, so they can be rebuilt without relinking.
Run the frontend build first:

	cd ./frontend/ && npm install && npm run build
*/
package frontend

import (
	_ "embed"
)

// AssetsDir is the default location of the built static assets, relative to
// the working directory of the server process. The "assets" directory name
// must match the bundler's assetsDir setting.
const AssetsDir = "./frontend/dist/assets"

// Index is the SPA shell document, verbatim.
//
//go:embed dist/index.html
var Index string
