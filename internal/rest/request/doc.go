// Package request builds immutable request descriptors for the REST manager.
//
// Rules by method for structured parameters (Builder.Params):
//   - POST: parameters become an application/x-www-form-urlencoded body
//   - PUT: parameters go to the query, Content-Length is forced to 0
//   - anything else: parameters go to the query, no body
//
// Raw payloads (Builder.Payload) carry bytes, a stream or a multipart form.
// Resource and method are validated; the body is passed through untouched
// for every verb except GET, HEAD, DELETE and OPTIONS, which never carry one.
//
// Example Usage:
//
//	b := request.NewBuilder(baseURL, "")
//	d := b.Params("/users", "get", params.FromMap(map[string]string{"page": "2"}))
//	d.URLString() // http://api.example.com/users?page=2
package request
