package invoice

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/angelofallars/hourbill/app/auth"
)

type pageProps struct {
	Title  string
	Rate   float64
	Client string
}

type previewProps struct {
	Document    string
	DownloadURL templ.SafeURL
	FileName    string
	Total       float64
	Hours       float64
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func hours(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// keyHeaders is the Alpine expression sending the stored API key with
// each htmx request.
func keyHeaders() string {
	return "key ? JSON.stringify({ '" + auth.OpenAIKeyHeader + "': key }) : '{}'"
}
