package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelofallars/htmx-go"

	"github.com/angelofallars/hourbill/app/event"
)

// OpenAIKeyHeader carries the API key entered in the settings dialog.
const OpenAIKeyHeader = "X-OpenAI-Api-Key"

// WithOpenAIKey stores the optional per-browser OpenAI key in the request
// context. Requests without one fall back to the server's key.
func WithOpenAIKey(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(OpenAIKeyHeader))

		if strings.ContainsAny(key, " \t\r\n") {
			_ = htmx.NewResponse().
				StatusCode(http.StatusUnauthorized).
				Reswap(htmx.SwapNone).
				AddTrigger(
					event.TriggerDisableSubmit,
					event.TriggerOpenSettings,
					event.TriggerSetErrMessage(
						"The OpenAI API key in the settings is malformed. Fix or clear it and try again.",
					),
				).
				Write(w)
			return
		}

		if key != "" {
			r = r.WithContext(context.WithValue(r.Context(), authKey, key))
		}

		f(w, r)
	}
}

// GetOpenAIKey returns the key stored by WithOpenAIKey, or "".
func GetOpenAIKey(c context.Context) string {
	key, _ := c.Value(authKey).(string)
	return key
}

type key struct{}

var authKey = key{}
