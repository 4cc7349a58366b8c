package sharelink

import (
	"html/template"
	"io"
	"strings"
)

// Page is the data behind the link-preview HTML served to chat apps and crawlers.
type Page struct {
	Title       string
	Description string
	Image       string
	URL         string
}

var pageTmpl = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}" />
<meta property="og:title" content="{{.Title}}" />
<meta property="og:description" content="{{.Description}}" />
{{- if .Image}}
<meta property="og:image" content="{{.Image}}" />
{{- end}}
<meta property="og:url" content="{{.URL}}" />
<meta property="og:type" content="product" />
</head>
<body>
<p>Redirecting to product page...</p>
<script>window.location.href = {{.URL}};</script>
</body>
</html>
`))

// NewPage builds the preview for a product. Inline data URIs are not usable
// as og:image, so only absolute http(s) images are advertised.
func NewPage(name string, price float64, description *string, images []string, productURL string) Page {
	p := Page{
		Title: name + " - Rs." + FormatPrice(price),
		URL:   productURL,
	}
	if description != nil {
		p.Description = *description
	}
	for _, img := range images {
		if strings.HasPrefix(img, "https://") || strings.HasPrefix(img, "http://") {
			p.Image = img
			break
		}
	}
	return p
}

func (p Page) Render(w io.Writer) error {
	return pageTmpl.Execute(w, p)
}
