package client

import (
	"net/http"
)

// encodeBody encodes a request body and fills in Content-Type when the
// caller did not set one.
func encodeBody(cs Converters, body any, header http.Header) ([]byte, error) {
	data, contentType, err := cs.Write(body, mediaTypeOf(header))
	if err != nil {
		return nil, err
	}
	if header.Get("Content-Type") == "" && contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return data, nil
}

// decodeResponse builds a Response from raw according to rt.
func decodeResponse(cs Converters, rt ResponseType, raw *RawResponse) (*Response, error) {
	resp := &Response{StatusCode: raw.StatusCode, Header: raw.Header}

	switch rt.kind {
	case kindNoBody:
		return resp, nil
	case kindConcrete, kindGeneric:
		if len(raw.Body) == 0 {
			return resp, nil
		}
		v, err := cs.Read(rt.typ, raw.MediaType(), raw.Body)
		if err != nil {
			return nil, err
		}
		resp.Body = v
		resp.hasBody = true
		return resp, nil
	default:
		return nil, rt.Validate()
	}
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return make(http.Header)
	}
	return h.Clone()
}
