package fortune

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf16"
)

// ContentTypeJSON is set on every response the handler produces.
const ContentTypeJSON = "application/json"

// UnavailableMessage is the error text returned when the fortune API fails.
const UnavailableMessage = "3rd party fortune API is down. Check server logs for more information."

// Request is an HTTP-style inbound event. The handler accepts it but never
// reads it.
type Request struct {
	HTTPMethod            string            `json:"httpMethod"`
	Path                  string            `json:"path"`
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	Headers               map[string]string `json:"headers,omitempty"`
	Body                  string            `json:"body"`
	IsBase64Encoded       bool              `json:"isBase64Encoded"`
}

// Response is the HTTP-style value returned for each invocation.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers"`
}

// Result is the decoded fortune API payload.
type Result struct {
	Fortune string `json:"fortune"`
}

func fortuneResponse(message string) Response {
	return jsonResponse(http.StatusOK, "fortune", message)
}

func unavailableResponse() Response {
	return jsonResponse(http.StatusServiceUnavailable, "error", UnavailableMessage)
}

func jsonResponse(status int, key, value string) Response {
	return Response{
		StatusCode: status,
		Body:       encodeObject(key, value),
		Headers: map[string]string{
			"Content-Type": ContentTypeJSON,
		},
	}
}

// encodeObject writes a single-key JSON object using the ": " separator and
// ASCII-only escaping. Existing clients compare bodies byte for byte.
func encodeObject(key, value string) string {
	var b strings.Builder
	b.Grow(len(key) + len(value) + 8)
	b.WriteByte('{')
	writeString(&b, key)
	b.WriteString(": ")
	writeString(&b, value)
	b.WriteByte('}')
	return b.String()
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(b, `\u%04x`, r)
			case r < 0x7f:
				b.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, r1, r2)
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
}
