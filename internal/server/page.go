package server

import (
	"embed"
	"encoding/base64"
	"html/template"
	"io"

	"mousebridge/internal/types"
)

//go:embed index.html
var embeddedFiles embed.FS

var pairingPage = template.Must(template.ParseFS(embeddedFiles, "index.html"))

type pageData struct {
	URL   string
	Image template.URL
}

func renderPairingPage(w io.Writer, info types.PairingInfo) error {
	return pairingPage.Execute(w, pageData{
		URL:   info.URL,
		Image: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(info.Image)),
	})
}
