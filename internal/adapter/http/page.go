package http

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
)

// PageOutput is an HTML response.
type PageOutput struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

var acceptTemplate = template.Must(template.New("accept").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

type acceptView struct {
	Title   string
	Message string
}

// acceptPage renders the outcome of following an invitation link for the
// vendor the user joined. The page is meant for a browser, so failures are
// rendered too instead of being returned as problem documents.
func acceptPage(ctx context.Context, vendor string, err error) (*PageOutput, error) {
	status := http.StatusOK
	view := acceptView{
		Title:   "Invitation accepted",
		Message: "You are now a member of vendor " + vendor + ".",
	}
	if err != nil {
		var msg string
		status, msg = statusFor(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(ctx, "accepting invitation", "error", err)
		}
		view = acceptView{Title: "Invitation not accepted", Message: msg}
	}

	var body bytes.Buffer
	if err := acceptTemplate.Execute(&body, view); err != nil {
		return nil, toHumaError(ctx, err)
	}

	return &PageOutput{
		Status:      status,
		ContentType: "text/html; charset=utf-8",
		Body:        body.Bytes(),
	}, nil
}
