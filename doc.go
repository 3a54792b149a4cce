/*
Package spashell hosts "Single Page Applications" (SPAs): it serves the SPA's
shell document on the root path as well as on any otherwise unmatched path,
supporting client-side DOM routing, and it serves the SPA's static assets
below "/assets/" from a directory produced by the frontend build.

NewRouter combines an IndexHandler, an AssetServer and the AuthStub placeholder
API into the fixed route table; Trace wraps it in per-request logging.

The IndexHandler serves the shell document verbatim, unless told to adjust the
document's base element to varying base paths behind path-rewriting proxies.
*/
package spashell
