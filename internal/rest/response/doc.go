/*
Package response classifies transport replies.

Every request lifecycle ends in exactly one Kind:

  - KindNetworkError: no status line was received, or the transport gave
    up after a second authentication challenge
  - KindParsingError: ModeJSON and the body is not application/json or
    fails to decode
  - KindSuccess: anything else, including 4xx and 5xx replies

HTTP status codes never decide the outcome on their own. Callers inspect
Result.StatusCode and Result.APIError for that.

Example Usage:

	res := response.Classify(reply, response.ModeJSON, nil)
	switch res.Kind {
	case response.KindSuccess:
		fmt.Println(res.StatusCode, res.Map())
	case response.KindParsingError:
		log.Printf("bad body: %v", res.Err)
	}
*/
package response
