package stdout

import (
	"context"
	"fmt"
	"io"
	"os"

	"subprovider/internal/publishers"
)

type Publisher struct {
	out io.Writer
}

func (p *Publisher) Publish(_ context.Context, doc publishers.Document, params map[string]interface{}) error {
	out := p.out
	if out == nil {
		out = os.Stdout
	}

	payload := publishers.Payload(doc, params)
	if publishers.Bool(params, "raw") {
		_, err := out.Write(payload)
		return err
	}

	fmt.Fprintf(out, "========== %s ==========\n", doc.Provider)
	if _, err := out.Write(payload); err != nil {
		return err
	}
	fmt.Fprintln(out, "\n============================================")
	return nil
}

func init() {
	publishers.Register("stdout", func() publishers.Publisher { return &Publisher{} })
}
